package sheets

import (
	"fmt"
	"strings"
)

// RangeSpec is a parsed A1-notation range. Rows are 1-based, 0 meaning
// unbounded. Columns are 0-based, EndCol -1 meaning unbounded.
type RangeSpec struct {
	Sheet    string
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
}

// ParseRange parses "Sheet", "Sheet!A:C" and "Sheet!A2:E9" forms.
func ParseRange(rng string) (RangeSpec, error) {
	spec := RangeSpec{EndCol: -1}

	sheet, cells, hasCells := strings.Cut(rng, "!")
	if sheet == "" {
		return spec, fmt.Errorf("range %q: empty sheet name", rng)
	}
	spec.Sheet = sheet
	if !hasCells {
		return spec, nil
	}

	start, end, hasEnd := strings.Cut(cells, ":")
	if !hasEnd {
		end = start
	}

	var err error
	if spec.StartCol, spec.StartRow, err = parseCell(start); err != nil {
		return spec, fmt.Errorf("range %q: %w", rng, err)
	}
	if spec.EndCol, spec.EndRow, err = parseCell(end); err != nil {
		return spec, fmt.Errorf("range %q: %w", rng, err)
	}
	if spec.EndCol >= 0 && spec.EndCol < spec.StartCol {
		return spec, fmt.Errorf("range %q: end column before start column", rng)
	}
	return spec, nil
}

// parseCell splits "A2" into a 0-based column index and a 1-based row
// number. A bare column ("A") yields row 0, a bare row ("2") column -1.
func parseCell(cell string) (col int, row int, err error) {
	i := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		i++
	}
	letters, digits := cell[:i], cell[i:]

	col = -1
	if letters != "" {
		col = 0
		for _, c := range letters {
			col = col*26 + int(c-'A') + 1
		}
		col--
	}

	if digits != "" {
		for _, c := range digits {
			if c < '0' || c > '9' {
				return 0, 0, fmt.Errorf("bad cell %q", cell)
			}
			row = row*10 + int(c-'0')
		}
		if row == 0 {
			return 0, 0, fmt.Errorf("bad cell %q", cell)
		}
	}

	if letters == "" && digits == "" {
		return 0, 0, fmt.Errorf("bad cell %q", cell)
	}
	return col, row, nil
}
