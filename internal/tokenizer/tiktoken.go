package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	EncodingCL100kBase = "cl100k_base"
	// EncodingP50kBase is the encoding name for GPT-3.
	EncodingP50kBase = "p50k_base"
	// EncodingR50kBase is the encoding name for older GPT-3 models.
	EncodingR50kBase = "r50k_base"
)

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
//
// The BPE ranks are fetched (or read from TIKTOKEN_CACHE_DIR) by tiktoken-go
// on first use.
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok) //nolint:gosec // G115: Token ID fits in int32 - vocab size < 2^31.
	}

	return result, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	intTokens := make([]int, len(tokens))
	for i, tok := range tokens {
		intTokens[i] = int(tok)
	}

	return t.encoding.Decode(intTokens), nil
}

// VocabSize returns the vocabulary size including special tokens.
//
// tiktoken-go doesn't expose it directly.
func (t *TikToken) VocabSize() int {
	switch t.name {
	case EncodingCL100kBase:
		return 100277
	case EncodingP50kBase, EncodingR50kBase:
		return 50257
	default:
		return 100277
	}
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
