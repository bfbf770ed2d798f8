package data

import (
	"fmt"

	"github.com/born-ml/batchfit/internal/tokenizer"
)

// TextSequence tokenizes text into a Sequence example with one width-1 step
// per token. Each step holds the token id scaled into [0, 1) by the
// vocabulary size.
func TextSequence(tok tokenizer.Tokenizer, text string, labels []float32) (Sequence[float32], error) {
	ids, err := tok.Encode(text)
	if err != nil {
		return Sequence[float32]{}, fmt.Errorf("tokenize: %w", err)
	}
	if len(ids) == 0 {
		return Sequence[float32]{}, fmt.Errorf("tokenize %q: %w", text, ErrEmptySequence)
	}

	vocab := float32(tok.VocabSize())
	steps := make([][]float32, len(ids))
	for i, id := range ids {
		steps[i] = []float32{float32(id) / vocab}
	}
	return Sequence[float32]{Steps: steps, Labels: labels}, nil
}

// TextSequences tokenizes a corpus; labels[i] belongs to texts[i].
func TextSequences(tok tokenizer.Tokenizer, texts []string, labels [][]float32) ([]Sequence[float32], error) {
	if len(texts) != len(labels) {
		return nil, fmt.Errorf("data: %d texts but %d label vectors", len(texts), len(labels))
	}
	out := make([]Sequence[float32], len(texts))
	for i, text := range texts {
		seq, err := TextSequence(tok, text, labels[i])
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = seq
	}
	return out, nil
}
