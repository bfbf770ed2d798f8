// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer turns text into token ids for sequence examples.
//
// Example:
//
//	tok, err := tokenizer.NewTikToken(tokenizer.EncodingCL100kBase)
//	seq, err := data.TextSequence(tok, "hello world", []float32{1})
package tokenizer

import (
	"github.com/born-ml/batchfit/internal/tokenizer"
)

// Tokenizer converts between text and token ids.
type Tokenizer = tokenizer.Tokenizer

// TikToken wraps an OpenAI tiktoken encoding.
type TikToken = tokenizer.TikToken

// Supported tiktoken encodings.
const (
	EncodingCL100kBase = tokenizer.EncodingCL100kBase
	EncodingP50kBase   = tokenizer.EncodingP50kBase
	EncodingR50kBase   = tokenizer.EncodingR50kBase
)

// NewTikToken loads a tiktoken encoding by name.
func NewTikToken(encoding string) (*TikToken, error) {
	return tokenizer.NewTikToken(encoding)
}
