package sheets

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS sheet_rows (
    spreadsheet_id TEXT NOT NULL,
    sheet_name TEXT NOT NULL,
    row_num INTEGER NOT NULL,
    cells TEXT NOT NULL,
    PRIMARY KEY (spreadsheet_id, sheet_name, row_num)
);
`

// SQLiteStore keeps spreadsheet rows in a local sqlite file. Rows are stored
// as JSON-encoded string arrays keyed by (spreadsheet, sheet, row number),
// so the bot speaks to it exactly as it would to a remote spreadsheet
// service.
type SQLiteStore struct {
	queue *storeQueue
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init sheet schema: %w", err)
	}
	return &SQLiteStore{queue: newStoreQueue(db)}, nil
}

func NewSQLiteStoreForTest(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &SQLiteStore{queue: newStoreQueueForTest(db)}, nil
}

func (s *SQLiteStore) Close() {
	s.queue.close()
}

func (s *SQLiteStore) ReadRange(spreadsheetID, rng string) ([][]string, error) {
	spec, err := ParseRange(rng)
	if err != nil {
		return nil, err
	}

	result, err := s.queue.execute(func(db *sql.DB) (interface{}, error) {
		query := `SELECT cells FROM sheet_rows WHERE spreadsheet_id = ? AND sheet_name = ?`
		args := []interface{}{spreadsheetID, spec.Sheet}
		if spec.StartRow > 0 {
			query += ` AND row_num >= ?`
			args = append(args, spec.StartRow)
		}
		if spec.EndRow > 0 {
			query += ` AND row_num <= ?`
			args = append(args, spec.EndRow)
		}
		query += ` ORDER BY row_num`

		rows, err := db.Query(query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var out [][]string
		for rows.Next() {
			var encoded string
			if err := rows.Scan(&encoded); err != nil {
				return nil, err
			}
			var cells []string
			if err := json.Unmarshal([]byte(encoded), &cells); err != nil {
				return nil, fmt.Errorf("decode row cells: %w", err)
			}
			out = append(out, sliceColumns(cells, spec))
		}
		return out, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([][]string), nil
}

func (s *SQLiteStore) AppendRow(spreadsheetID, rng string, row []string) error {
	spec, err := ParseRange(rng)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(row)
	if err != nil {
		return err
	}

	_, err = s.queue.execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO sheet_rows (spreadsheet_id, sheet_name, row_num, cells)
			SELECT ?, ?, COALESCE(MAX(row_num), 0) + 1, ?
			FROM sheet_rows WHERE spreadsheet_id = ? AND sheet_name = ?
		`, spreadsheetID, spec.Sheet, string(encoded), spreadsheetID, spec.Sheet)
		return nil, err
	})
	return err
}

func (s *SQLiteStore) UpdateRow(spreadsheetID, rng string, row []string) error {
	spec, err := ParseRange(rng)
	if err != nil {
		return err
	}
	rowNum := spec.StartRow
	if rowNum == 0 {
		rowNum = 1
	}
	encoded, err := json.Marshal(row)
	if err != nil {
		return err
	}

	_, err = s.queue.execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO sheet_rows (spreadsheet_id, sheet_name, row_num, cells)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(spreadsheet_id, sheet_name, row_num) DO UPDATE SET cells = excluded.cells
		`, spreadsheetID, spec.Sheet, rowNum, string(encoded))
		return nil, err
	})
	return err
}

func sliceColumns(cells []string, spec RangeSpec) []string {
	start := spec.StartCol
	if start < 0 {
		start = 0
	}
	if start >= len(cells) {
		return []string{}
	}
	end := len(cells)
	if spec.EndCol >= 0 && spec.EndCol+1 < end {
		end = spec.EndCol + 1
	}
	return cells[start:end]
}
