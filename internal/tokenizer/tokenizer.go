// Package tokenizer provides a deterministic token counter used for
// chunk sizing and retrieval prompt budget decisions.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Counter counts tokens with a fixed vocabulary so counts stay stable
// across ingestions and match the LLM's own accounting.
type Counter struct {
	enc *tiktoken.Tiktoken
}

var (
	defaultOnce    sync.Once
	defaultCounter *Counter
	defaultErr     error
)

// New builds a Counter over the cl100k_base encoding.
func New() (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load %s encoding: %w", encodingName, err)
	}
	return &Counter{enc: enc}, nil
}

// Default returns a process-wide Counter, building it lazily on first use.
func Default() (*Counter, error) {
	defaultOnce.Do(func() {
		defaultCounter, defaultErr = New()
	})
	return defaultCounter, defaultErr
}

// Count returns the number of tokens text encodes to.
func (c *Counter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
