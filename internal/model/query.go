package model

// ItemStrategy identifies how an item listing is retrieved.
type ItemStrategy int

const (
	StrategyNone ItemStrategy = iota
	StrategyAll
	StrategyByID
	StrategyCreatedBy
	StrategyNameSearch
	StrategyByDate
	StrategyCategory
	StrategyTag
	StrategyCategoryAndTag
)

var strategyNames = map[ItemStrategy]string{
	StrategyNone:           "none",
	StrategyAll:            "all",
	StrategyByID:           "by-id",
	StrategyCreatedBy:      "created-by",
	StrategyNameSearch:     "name-search",
	StrategyByDate:         "by-date",
	StrategyCategory:       "category",
	StrategyTag:            "tag",
	StrategyCategoryAndTag: "category-and-tag",
}

func (s ItemStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// ItemQuery is a resolved item retrieval: one strategy plus the values it needs.
// Fields unused by the strategy are left empty.
type ItemQuery struct {
	Strategy   ItemStrategy
	ID         string
	CreatedBy  string
	NameSearch string
	Category   string
	Tag        string
	// Latest sorts by updatedAt descending. Only used by StrategyByDate.
	Latest bool
}
