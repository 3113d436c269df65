package model

// Record type discriminators. Each kind lives in its own table, the value is
// kept on the records so clients can tell them apart.
const (
	TypeTag      = "#TAG"
	TypeCategory = "#CATEGORY"
	TypeItem     = "#ITEM"
)
