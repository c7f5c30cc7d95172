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

package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Processor is the uniform stage contract: given a node and an execution
// context, produce a result payload or fail with a typed error.
// ValidateConfig must be usable before scheduling.
type Processor interface {
	Execute(ctx context.Context, node Node, ec *ExecutionContext) (map[string]any, error)
	ValidateConfig(config map[string]any) error
}

// Registry selects processors by logical stage name.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]Processor
}

// NewRegistry creates an empty processor registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]Processor)}
}

// Register installs a processor under a stage name, replacing any
// earlier registration.
func (r *Registry) Register(name string, p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[name] = p
}

// Get returns the processor for a stage name. The error for an unknown
// name lists what is available.
func (r *Registry) Get(name string) (Processor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.processors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			ErrUnknownProcessor, name, strings.Join(r.namesLocked(), ", "))
	}
	return p, nil
}

// Names returns the registered stage names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.processors))
	for name := range r.processors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkConfigKeys rejects any key outside the allowed set.
func checkConfigKeys(config map[string]any, allowed ...string) error {
	for key := range config {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrUnknownConfigKey, key)
		}
	}
	return nil
}

// configInt reads an integer config value, tolerating the float64 form
// decoded from JSON. Missing keys return the fallback.
func configInt(config map[string]any, key string, fallback int) (int, error) {
	value, ok := config[key]
	if !ok {
		return fallback, nil
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidConfig, key)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidConfig, key)
	}
}

// configString reads a string config value. Missing keys return the
// fallback.
func configString(config map[string]any, key, fallback string) (string, error) {
	value, ok := config[key]
	if !ok {
		return fallback, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidConfig, key)
	}
	return s, nil
}
