package models

// Lookup identifies a single DynamoDB record, either through the table's
// primary key or, when Index is set, a global secondary index.
type Lookup struct {
	Table string
	Index string
	Key   string
	Value string
}
