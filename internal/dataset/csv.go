// Package dataset loads training examples from CSV files.
//
// Columns are assigned by an explicit schema: label column indices are
// listed per head and every remaining column is a feature. Values are
// parsed as float32 with no normalization.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/batchfit/internal/data"
)

// Common errors.
var (
	ErrNoRecords   = errors.New("dataset: no records")
	ErrSchema      = errors.New("dataset: invalid schema")
	ErrClassRange  = errors.New("dataset: class index out of range")
	ErrRecordWidth = errors.New("dataset: record has wrong number of columns")
)

// Schema maps CSV columns onto features and per-head labels.
type Schema struct {
	// Header skips the first record.
	Header bool

	// Labels lists the zero-based label columns of each head.
	Labels [][]int

	// Classes, when set, gives per head the number of classes. A head with
	// Classes[h] > 0 must have exactly one label column holding an integer
	// class index, which is expanded to a one-hot vector.
	Classes []int
}

// Record is one parsed CSV row.
type Record struct {
	Features []float32
	Labels   [][]float32 // One vector per head
}

// Validate checks the schema against itself.
func (s Schema) Validate() error {
	if len(s.Labels) == 0 {
		return fmt.Errorf("%w: no label columns", ErrSchema)
	}
	if len(s.Classes) != 0 && len(s.Classes) != len(s.Labels) {
		return fmt.Errorf("%w: %d class counts for %d heads", ErrSchema, len(s.Classes), len(s.Labels))
	}
	seen := map[int]bool{}
	for h, cols := range s.Labels {
		if len(cols) == 0 {
			return fmt.Errorf("%w: head %d has no label columns", ErrSchema, h)
		}
		if s.classes(h) > 0 && len(cols) != 1 {
			return fmt.Errorf("%w: class head %d needs exactly one label column", ErrSchema, h)
		}
		for _, c := range cols {
			if c < 0 {
				return fmt.Errorf("%w: negative column %d", ErrSchema, c)
			}
			if seen[c] {
				return fmt.Errorf("%w: column %d used twice", ErrSchema, c)
			}
			seen[c] = true
		}
	}
	return nil
}

func (s Schema) classes(head int) int {
	if head < len(s.Classes) {
		return s.Classes[head]
	}
	return 0
}

func (s Schema) labelColumns() map[int]bool {
	cols := map[int]bool{}
	for _, group := range s.Labels {
		for _, c := range group {
			cols[c] = true
		}
	}
	return cols
}

// Load reads every record of the CSV file at path.
func Load(path string, schema Schema) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	records, err := Read(f, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Read parses CSV records from r.
//
// Every record must have the same number of columns as the first one.
func Read(r io.Reader, schema Schema) ([]Record, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	rows, err := readRows(r, schema.Header)
	if err != nil {
		return nil, err
	}

	width := len(rows[0])
	labelCols := schema.labelColumns()
	for c := range labelCols {
		if c >= width {
			return nil, fmt.Errorf("%w: label column %d beyond %d columns", ErrSchema, c, width)
		}
	}
	if len(labelCols) == width {
		return nil, fmt.Errorf("%w: no feature columns left", ErrSchema)
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		rec, err := parseRecord(row, schema, labelCols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records[i] = rec
	}
	return records, nil
}

func readRows(r io.Reader, header bool) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if errors.Is(err, csv.ErrFieldCount) {
		return nil, fmt.Errorf("%w: %w", ErrRecordWidth, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if header && len(rows) > 0 {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}
	return rows, nil
}

func parseRecord(row []string, schema Schema, labelCols map[int]bool) (Record, error) {
	rec := Record{
		Features: make([]float32, 0, len(row)-len(labelCols)),
		Labels:   make([][]float32, len(schema.Labels)),
	}
	for c, field := range row {
		if labelCols[c] {
			continue
		}
		v, err := parseValue(field)
		if err != nil {
			return Record{}, fmt.Errorf("column %d: %w", c, err)
		}
		rec.Features = append(rec.Features, v)
	}

	for h, cols := range schema.Labels {
		labels, err := parseLabels(row, cols, schema.classes(h))
		if err != nil {
			return Record{}, fmt.Errorf("head %d: %w", h, err)
		}
		rec.Labels[h] = labels
	}
	return rec, nil
}

func parseLabels(row []string, cols []int, classes int) ([]float32, error) {
	if classes > 0 {
		class, err := strconv.Atoi(strings.TrimSpace(row[cols[0]]))
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", cols[0], err)
		}
		if class < 0 || class >= classes {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrClassRange, class, classes)
		}
		oneHot := make([]float32, classes)
		oneHot[class] = 1
		return oneHot, nil
	}

	labels := make([]float32, len(cols))
	for i, c := range cols {
		v, err := parseValue(row[c])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", c, err)
		}
		labels[i] = v
	}
	return labels, nil
}

func parseValue(field string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

// Flat converts single-head records into flat examples.
func Flat(records []Record) ([]data.Flat[float32], error) {
	out := make([]data.Flat[float32], len(records))
	for i, r := range records {
		if len(r.Labels) != 1 {
			return nil, fmt.Errorf("%w: record %d has %d heads, want 1", ErrSchema, i, len(r.Labels))
		}
		out[i] = data.Flat[float32]{Features: r.Features, Labels: r.Labels[0]}
	}
	return out, nil
}

// MultiHead converts records into flat multi-head examples.
func MultiHead(records []Record) []data.MultiHead[float32] {
	out := make([]data.MultiHead[float32], len(records))
	for i, r := range records {
		out[i] = data.MultiHead[float32]{Features: r.Features, Labels: r.Labels}
	}
	return out
}

// LabelWidths returns the label width of every head, taken from the first
// record.
func LabelWidths(records []Record) []int {
	if len(records) == 0 {
		return nil
	}
	widths := make([]int, len(records[0].Labels))
	for h, l := range records[0].Labels {
		widths[h] = len(l)
	}
	return widths
}

// ColumnsOf parses a comma-separated column list such as "4" or "4,5".
func ColumnsOf(list string) ([]int, error) {
	var cols []int
	for part := range strings.SplitSeq(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %w", ErrSchema, part, err)
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: empty column list", ErrSchema)
	}
	return cols, nil
}
