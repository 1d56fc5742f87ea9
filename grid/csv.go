package grid

import (
	"bufio"
	"os"
	"strings"

	"github.com/TKDKid1000/tablecalc/formula"
)

// Load reads a CSV file into a fresh Grid, one row per line, splitting on
// commas outside double-quoted runs (§6; grounded in the original
// program's parse_csv_line: no escape processing, a '"' simply toggles
// whether a following ',' counts as a split point).
func Load(path string, registry *formula.Registry) (*Grid, error) {
	return LoadDelim(path, registry, ',')
}

// LoadDelim is Load with a caller-chosen field delimiter, for CSV-alike
// dialects (e.g. semicolon- or tab-separated) that use the same
// quote-toggle splitting rule with a different separator byte.
func LoadDelim(path string, registry *formula.Registry, delimiter rune) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g := New(registry)
	scanner := bufio.NewScanner(f)
	row := 0
	for scanner.Scan() {
		cols := splitCSVLine(scanner.Text(), delimiter)
		for col, text := range cols {
			if text == "" {
				continue
			}
			g.Set(formula.Cell(row, col), text)
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// splitCSVLine splits line on every delimiter outside a double-quoted run,
// with no escape processing, matching original_source/src/spreadsheet.rs's
// parse_csv_line exactly: unlike strings.FieldsFunc (which collapses
// consecutive delimiters and drops empty fields), a comma immediately
// next to another comma, or at either end of the line, still produces an
// empty field so column positions aren't shifted by blank cells.
func splitCSVLine(line string, delimiter rune) []string {
	fields := []string{}
	insideQuote := false
	var field strings.Builder
	for _, c := range line {
		switch {
		case c == '"':
			insideQuote = !insideQuote
			field.WriteRune(c)
		case c == delimiter && !insideQuote:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(c)
		}
	}
	fields = append(fields, field.String())
	return fields
}

// Save writes every occupied cell back out as CSV, one row per line, up to
// the highest occupied row and column. Cell text is written verbatim
// (matching the no-escape-processing contract Load reads back); text
// containing a literal comma will not round-trip faithfully, the same
// limitation the original CSV reader carries.
func Save(path string, g *Grid) error {
	return SaveDelim(path, g, ',')
}

// SaveDelim is Save with a caller-chosen field delimiter, matching
// LoadDelim.
func SaveDelim(path string, g *Grid, delimiter rune) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	maxRow, maxCol := -1, -1
	for _, addr := range g.Occupied() {
		if addr.Row > maxRow {
			maxRow = addr.Row
		}
		if addr.Col > maxCol {
			maxCol = addr.Col
		}
	}

	w := bufio.NewWriter(f)
	defer w.Flush()

	for row := 0; row <= maxRow; row++ {
		cols := make([]string, maxCol+1)
		for col := 0; col <= maxCol; col++ {
			cols[col] = g.GetCellText(formula.Cell(row, col))
		}
		if _, err := w.WriteString(strings.Join(cols, string(delimiter))); err != nil {
			return err
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	return nil
}
