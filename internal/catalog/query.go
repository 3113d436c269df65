package catalog

import (
	"strings"

	"github.com/erazemk/katalog/internal/model"
)

// Item listing parameters.
const (
	ParamItem       = "item"
	ParamCreatedBy  = "createdby"
	ParamNameSearch = "namesearch"
	ParamOrder      = "order"
	ParamCategory   = "category"
	ParamTag        = "tag"
)

// RouteItemQuery picks exactly one retrieval strategy for a listing request.
// The first matching rule wins:
//
//  1. no parameters: all items by name
//  2. item: single item by id
//  3. createdby: creator contains value
//  4. namesearch: lowercased name contains value
//  5. order: all items by updatedAt, narrowed by category and/or tag
//  6. only category: category contains value
//  7. only tag: tags include value
//  8. only category and tag: both
//
// Anything else reports false. Empty values count as absent, but every key,
// recognized or not, counts towards the "only" checks of rules 6 to 8.
func RouteItemQuery(params map[string]string) (model.ItemQuery, bool) {
	if len(params) == 0 {
		return model.ItemQuery{Strategy: model.StrategyAll}, true
	}

	id := params[ParamItem]
	createdBy := params[ParamCreatedBy]
	nameSearch := params[ParamNameSearch]
	order := params[ParamOrder]
	category := params[ParamCategory]
	tag := params[ParamTag]

	switch {
	case id != "":
		return model.ItemQuery{Strategy: model.StrategyByID, ID: id}, true
	case createdBy != "":
		return model.ItemQuery{Strategy: model.StrategyCreatedBy, CreatedBy: createdBy}, true
	case nameSearch != "":
		return model.ItemQuery{Strategy: model.StrategyNameSearch, NameSearch: strings.ToLower(nameSearch)}, true
	case order != "":
		return model.ItemQuery{
			Strategy: model.StrategyByDate,
			Latest:   order == model.OrderLatest,
			Category: category,
			Tag:      tag,
		}, true
	case len(params) == 1 && category != "":
		return model.ItemQuery{Strategy: model.StrategyCategory, Category: category}, true
	case len(params) == 1 && tag != "":
		return model.ItemQuery{Strategy: model.StrategyTag, Tag: tag}, true
	case len(params) == 2 && category != "" && tag != "":
		return model.ItemQuery{Strategy: model.StrategyCategoryAndTag, Category: category, Tag: tag}, true
	}
	return model.ItemQuery{Strategy: model.StrategyNone}, false
}
