package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Workbook columns, matched case-insensitively against the header row.
const (
	ColumnID       = "id"
	ColumnTerm     = "term"
	ColumnMeaning  = "meaning"
	ColumnPOS      = "pos"
	ColumnExample  = "example"
	ColumnCEFR     = "cefr"
	ColumnFreqRank = "freq_rank"
	ColumnTopics   = "topics"
)

// LoadWorkbook reads words from the first sheet of an xlsx file. The first
// row is the header; id and term columns are required. Topics are comma
// separated. Rows with a blank term are skipped.
func LoadWorkbook(path string) ([]domain.Word, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{ColumnID, ColumnTerm} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("workbook %s: missing %q column", path, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	words := make([]domain.Word, 0, len(rows)-1)
	for n, row := range rows[1:] {
		w := domain.Word{
			ID:      cell(row, ColumnID),
			Term:    cell(row, ColumnTerm),
			Meaning: cell(row, ColumnMeaning),
			POS:     cell(row, ColumnPOS),
			Example: cell(row, ColumnExample),
			CEFR:    cell(row, ColumnCEFR),
		}
		if w.Term == "" {
			continue
		}
		if raw := cell(row, ColumnFreqRank); raw != "" {
			rank, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("workbook %s row %d: invalid freq_rank %q", path, n+2, raw)
			}
			w.FreqRank = &rank
		}
		for _, topic := range strings.Split(cell(row, ColumnTopics), ",") {
			if topic = strings.TrimSpace(topic); topic != "" {
				w.Topics = append(w.Topics, topic)
			}
		}
		words = append(words, w)
	}
	return words, nil
}
