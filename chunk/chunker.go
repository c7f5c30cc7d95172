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

import "strings"

// separators, in preference order. The first one found past the window
// midpoint wins; offsets are bytes.
var separators = []string{"\n\n", ". ", "! ", "? ", "\n", " "}

// Split slices text into overlapping windows of at most cfg.Size bytes.
// Slices are trimmed; slices empty after trimming are dropped. The caller
// is expected to have validated cfg.
func Split(text string, cfg Config) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	start := 0
	length := len(text)

	for start < length {
		end := min(start+cfg.Size, length)

		// The final window is never cut short.
		if end < length {
			for _, sep := range separators {
				rel := strings.LastIndex(text[start:end], sep)
				if rel < 0 {
					continue
				}
				at := start + rel
				if at > start+cfg.Size/2 {
					end = at + len(sep)
					break
				}
			}
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= length {
			break
		}
		start = max(end-cfg.Overlap, start+1)
	}

	return chunks
}
