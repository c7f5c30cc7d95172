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

package audit

import (
	"fmt"
	"strconv"

	"github.com/tessella/docpipe/core"
)

// safeFields may pass into an event payload unmodified. Anything not
// listed here and not covered by a derived count is dropped.
var safeFields = []string{
	"document_id",
	"operation",
	"status",
	"chunk_count",
	"indexed_count",
	"deleted_count",
	"results_count",
	"file_size",
	"event_type",
	"timestamp",
	"metadata_fields",
	"completeness",
	"validation_status",
	"method",
}

// Sanitize filters a raw payload down to loggable fields. Free-text
// fields (text, query, chunk and result collections) are replaced by
// their lengths so content never leaks into the audit trail.
func Sanitize(payload map[string]any) map[string]string {
	sanitized := make(map[string]string, len(payload))

	for _, field := range safeFields {
		if value, ok := payload[field]; ok && value != nil {
			sanitized[field] = stringify(value)
		}
	}

	if text, ok := payload["text"].(string); ok {
		sanitized["text_length"] = strconv.Itoa(len(text))
	}
	for _, field := range []string{"query", "search_query"} {
		if query, ok := payload[field].(string); ok {
			sanitized["query_length"] = strconv.Itoa(len(query))
		}
	}
	if n, ok := collectionLen(payload["chunks"]); ok {
		sanitized["chunks_count"] = strconv.Itoa(n)
	}
	if n, ok := collectionLen(payload["results"]); ok {
		sanitized["results_count"] = strconv.Itoa(n)
	}

	return sanitized
}

// InferCategory derives an event category from payload shape when the
// caller did not set one explicitly.
func InferCategory(payload map[string]any) string {
	if op, ok := payload["operation"].(string); ok {
		switch op {
		case "index", "search", "update", "delete":
			return core.CategoryVectorStore
		}
	}
	if _, ok := payload["document_id"]; ok {
		return core.CategoryDocument
	}
	if _, ok := payload["event_type"]; ok {
		return core.CategorySystem
	}
	return core.CategoryWorkflow
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func collectionLen(value any) (int, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case []core.Chunk:
		return len(v), true
	case []string:
		return len(v), true
	case []any:
		return len(v), true
	case []map[string]any:
		return len(v), true
	default:
		return 0, false
	}
}
