package sharky

import (
	"fmt"
	"os"

	"github.com/hupe1980/sharky/internal/hamming"
)

// Config describes one pipeline run.
type Config struct {
	// MaxDistance bounds the number of substituted columns, 0..10.
	MaxDistance int
	// Name is the string whose neighbours are generated, 1..49 bytes.
	Name string
	// DictionaryPath selects dictionary filtering when non-empty.
	DictionaryPath string
	// Output receives the candidate stream. Default: os.Stdout.
	Output *os.File
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.MaxDistance < 0 || c.MaxDistance > hamming.MaxDistanceLimit {
		return fmt.Errorf("%w: max distance %d outside 0..%d", ErrInvalidConfig, c.MaxDistance, hamming.MaxDistanceLimit)
	}
	if len(c.Name) == 0 {
		return fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}
	if len(c.Name) > hamming.MaxNameLen {
		return fmt.Errorf("%w: name is %d bytes, limit %d", ErrInvalidConfig, len(c.Name), hamming.MaxNameLen)
	}
	return nil
}
