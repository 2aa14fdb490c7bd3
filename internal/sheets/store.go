package sheets

// Store is the tabular datastore the bot reads content from and writes
// results to. It is addressed spreadsheet-style: a store identifier plus an
// A1-notation range string ("Tests", "Guidelines!A:C", "Results!A2:E2").
//
// Implementations do not retry; callers decide whether a failed call is
// worth repeating.
type Store interface {
	// ReadRange returns the rows inside the range, in row order. Cells are
	// returned as strings; trailing cells outside the column bounds are cut.
	ReadRange(spreadsheetID, rng string) ([][]string, error)

	// AppendRow adds row after the last occupied row of the range's sheet.
	AppendRow(spreadsheetID, rng string, row []string) error

	// UpdateRow overwrites the row at the range's start position.
	UpdateRow(spreadsheetID, rng string, row []string) error
}
