package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when a statistics payload cannot be decoded or
// carries values outside their valid range.
var ErrMalformed = errors.New("malformed statistics")

// FileStatistics summarizes a processed file. Field names follow the
// processing service's wire format.
type FileStatistics struct {
	TotalRows             int          `json:"total_rows" yaml:"total_rows"`
	TotalColumns          int          `json:"total_columns" yaml:"total_columns"`
	TotalEmptyCells       int          `json:"total_empty_cells" yaml:"total_empty_cells"`
	RowsWithErrors        int          `json:"rows_with_errors" yaml:"rows_with_errors"`
	EmptyCellsByColumn    ColumnCounts `json:"empty_cells_by_column" yaml:"empty_cells_by_column"`
	ProcessingTimeSeconds float64      `json:"processing_time_seconds" yaml:"processing_time_seconds"`
}

// Parse decodes a JSON statistics record, such as the X-Statistics header
// value or the "statistics" member of a CSV endpoint response.
func Parse(data []byte) (*FileStatistics, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%w: expected a json object", ErrMalformed)
	}
	var s FileStatistics
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseHeader is Parse for a header value.
func ParseHeader(v string) (*FileStatistics, error) {
	return Parse([]byte(v))
}

// Validate checks that every count is non-negative.
func (s *FileStatistics) Validate() error {
	switch {
	case s.TotalRows < 0:
		return fmt.Errorf("%w: total_rows is negative", ErrMalformed)
	case s.TotalColumns < 0:
		return fmt.Errorf("%w: total_columns is negative", ErrMalformed)
	case s.TotalEmptyCells < 0:
		return fmt.Errorf("%w: total_empty_cells is negative", ErrMalformed)
	case s.RowsWithErrors < 0:
		return fmt.Errorf("%w: rows_with_errors is negative", ErrMalformed)
	case s.ProcessingTimeSeconds < 0:
		return fmt.Errorf("%w: processing_time_seconds is negative", ErrMalformed)
	}
	for _, c := range s.EmptyCellsByColumn {
		if c.Count < 0 {
			return fmt.Errorf("%w: empty cell count for %q is negative", ErrMalformed, c.Column)
		}
	}
	return nil
}

// EmptyCellBreakdown returns the columns worth showing in the empty-cell
// section: nil when the file has no empty cells, otherwise non-zero entries
// by count descending. Equal counts keep their original order.
func (s *FileStatistics) EmptyCellBreakdown() []ColumnCount {
	if s == nil || s.TotalEmptyCells <= 0 {
		return nil
	}
	out := make([]ColumnCount, 0, len(s.EmptyCellsByColumn))
	for _, c := range s.EmptyCellsByColumn {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Markdown renders the statistics as a compact text block.
func (s *FileStatistics) Markdown() string {
	var b strings.Builder
	b.WriteString("[FILE STATISTICS]\n")
	b.WriteString(fmt.Sprintf("Total rows: %d\n", s.TotalRows))
	b.WriteString(fmt.Sprintf("Total columns: %d\n", s.TotalColumns))
	b.WriteString(fmt.Sprintf("Total empty cells: %d\n", s.TotalEmptyCells))
	b.WriteString(fmt.Sprintf("Rows with errors: %d\n", s.RowsWithErrors))
	b.WriteString(fmt.Sprintf("Processing time: %.2fs\n", s.ProcessingTimeSeconds))

	if rows := s.EmptyCellBreakdown(); len(rows) > 0 {
		b.WriteString("\n[EMPTY CELLS BY COLUMN]\n")
		for _, c := range rows {
			b.WriteString(fmt.Sprintf("- %s (%d)\n", safeName(c.Column), c.Count))
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "(unnamed)"
	}
	return s
}
