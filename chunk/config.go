// Copyright 2025 Tessella Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chunk

import (
	"errors"
	"fmt"
)

// MinChunkSize is the smallest accepted window size in bytes.
const MinChunkSize = 100

// Defaults applied when the caller leaves the configuration zero-valued.
const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 50
)

var (
	// ErrChunkSizeTooSmall indicates a window size below MinChunkSize.
	ErrChunkSizeTooSmall = errors.New("chunk size below minimum")

	// ErrNegativeOverlap indicates a negative overlap.
	ErrNegativeOverlap = errors.New("chunk overlap must not be negative")

	// ErrOverlapTooLarge indicates an overlap equal to or larger than
	// the window size.
	ErrOverlapTooLarge = errors.New("chunk overlap must be smaller than chunk size")
)

// Config controls the sliding window.
type Config struct {
	Size    int
	Overlap int
}

// DefaultConfig returns the default window configuration.
func DefaultConfig() Config {
	return Config{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap}
}

// Validate rejects configurations the splitter cannot honor.
func (c Config) Validate() error {
	if c.Size < MinChunkSize {
		return fmt.Errorf("%w: %d < %d", ErrChunkSizeTooSmall, c.Size, MinChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeOverlap, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap %d, size %d", ErrOverlapTooLarge, c.Overlap, c.Size)
	}
	return nil
}
