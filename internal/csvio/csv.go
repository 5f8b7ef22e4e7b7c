// Package csvio encodes flat records to CSV text and decodes CSV documents
// back into header-keyed rows.
//
// The decoder works line by line: the document is split on line breaks before
// any field is tokenized, so a quoted field cannot contain a literal newline.
// Such a row is reported as a FormatError rather than silently mis-split.
package csvio

import (
	"fmt"
	"strings"
)

// ListSeparator joins the elements of a multi-value field inside one cell.
const ListSeparator = ";"

// Record is one row to encode, keyed by column name.
// Values may be nil, string, []string or anything fmt.Sprint renders.
type Record map[string]any

// FormatError reports a document that cannot be read as header plus data.
type FormatError struct {
	Line    int // 1-based line among non-blank lines; 0 for whole-document problems
	Message string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Document is a parsed CSV document.
type Document struct {
	Headers []string
	Rows    [][]string
}

// Encode renders records as CSV with a header line of columns.
// Lines are joined with "\n"; there is no trailing newline.
func Encode(records []Record, columns []string) string {
	lines := make([]string, 0, len(records)+1)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = Escape(c)
	}
	lines = append(lines, strings.Join(header, ","))

	for _, rec := range records {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = Escape(cellString(rec[c]))
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	return strings.Join(lines, "\n")
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ListSeparator)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Escape quotes a field if it contains a comma, a double quote or a line
// break, doubling any embedded quotes. Other fields are returned unchanged.
func Escape(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ParseRow splits one CSV line into trimmed fields.
func ParseRow(line string) []string {
	fields, _ := tokenize(line)
	return fields
}

// tokenize reports whether the line ended outside a quoted region.
func tokenize(line string) ([]string, bool) {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))

	return fields, !inQuotes
}

// ParseDocument splits text into lines, drops blank ones and tokenizes the
// header and each data row. It fails when no data row follows the header.
func ParseDocument(text string) (Document, error) {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}

	if len(lines) < 2 {
		return Document{}, &FormatError{Message: "CSV must contain a header row and at least one data row"}
	}

	headers, ok := tokenize(lines[0])
	if !ok {
		return Document{}, &FormatError{Line: 1, Message: "unterminated quoted field in header"}
	}

	doc := Document{Headers: headers, Rows: make([][]string, 0, len(lines)-1)}
	for i, l := range lines[1:] {
		row, ok := tokenize(l)
		if !ok {
			return Document{}, &FormatError{Line: i + 2, Message: "unterminated quoted field (quoted line breaks are not supported)"}
		}
		doc.Rows = append(doc.Rows, row)
	}

	return doc, nil
}

// Records zips every row with the headers by name. Fields past the last
// header are ignored; headers past the end of a short row are absent from
// that row's map. When a header repeats, the rightmost column wins.
func (d Document) Records() []map[string]string {
	out := make([]map[string]string, len(d.Rows))
	for i, row := range d.Rows {
		m := make(map[string]string, len(d.Headers))
		for j, h := range d.Headers {
			if j >= len(row) {
				break
			}
			m[h] = row[j]
		}
		out[i] = m
	}
	return out
}
