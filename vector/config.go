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

package vector

import (
	"errors"
	"fmt"
)

// Operation selects which index call a configured node performs.
type Operation string

const (
	OpIndex  Operation = "index"
	OpSearch Operation = "search"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Search limit bounds.
const (
	DefaultSearchLimit = 10
	MinSearchLimit     = 1
	MaxSearchLimit     = 100
)

var (
	// ErrInvalidOperation indicates an operation outside the supported set.
	ErrInvalidOperation = errors.New("unsupported vector store operation")

	// ErrInvalidLimit indicates a search limit outside [1,100].
	ErrInvalidLimit = errors.New("search limit out of range")
)

// Config is the validated per-node configuration for index operations.
type Config struct {
	Operation Operation
	Limit     int
}

// DefaultConfig returns an index operation with the default search limit.
func DefaultConfig() Config {
	return Config{Operation: OpIndex, Limit: DefaultSearchLimit}
}

// Validate rejects unknown operations and, for search, out-of-range
// limits. Validation runs before scheduling, never mid-operation.
func (c Config) Validate() error {
	switch c.Operation {
	case OpIndex, OpSearch, OpUpdate, OpDelete:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOperation, c.Operation)
	}

	if c.Operation == OpSearch {
		if c.Limit < MinSearchLimit || c.Limit > MaxSearchLimit {
			return fmt.Errorf("%w: %d", ErrInvalidLimit, c.Limit)
		}
	}
	return nil
}
