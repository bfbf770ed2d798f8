package dataset

import (
	"fmt"
	"io"

	"github.com/born-ml/batchfit/internal/data"
	"github.com/born-ml/batchfit/internal/tokenizer"
)

// TextSchema maps a CSV with one free-text column onto sequence examples.
// Label columns follow the rules of Schema for a single head.
type TextSchema struct {
	Header  bool
	Text    int   // Zero-based text column
	Labels  []int // Label columns
	Classes int   // > 0 expands a class-index label into one-hot
}

// ReadText parses a text CSV and tokenizes every text into a sequence of
// width-1 steps.
func ReadText(r io.Reader, schema TextSchema, tok tokenizer.Tokenizer) ([]data.Sequence[float32], error) {
	if len(schema.Labels) == 0 {
		return nil, fmt.Errorf("%w: no label columns", ErrSchema)
	}
	if schema.Classes > 0 && len(schema.Labels) != 1 {
		return nil, fmt.Errorf("%w: class labels need exactly one column", ErrSchema)
	}
	for _, c := range schema.Labels {
		if c == schema.Text {
			return nil, fmt.Errorf("%w: column %d is both text and label", ErrSchema, c)
		}
	}

	rows, err := readRows(r, schema.Header)
	if err != nil {
		return nil, err
	}
	width := len(rows[0])
	if schema.Text < 0 || schema.Text >= width {
		return nil, fmt.Errorf("%w: text column %d beyond %d columns", ErrSchema, schema.Text, width)
	}
	for _, c := range schema.Labels {
		if c < 0 || c >= width {
			return nil, fmt.Errorf("%w: label column %d beyond %d columns", ErrSchema, c, width)
		}
	}

	texts := make([]string, len(rows))
	labels := make([][]float32, len(rows))
	for i, row := range rows {
		l, err := parseLabels(row, schema.Labels, schema.Classes)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		texts[i] = row[schema.Text]
		labels[i] = l
	}
	return data.TextSequences(tok, texts, labels)
}
