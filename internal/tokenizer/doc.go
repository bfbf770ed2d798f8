// Package tokenizer converts text into token ids so that text corpora can be
// fed through the sequence batching path.
//
// Example usage:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := tok.Encode("Hello, world!")
package tokenizer
