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


// Package ai defines the embedding capability consumed by the vector index.
//
// The pipeline does not implement an embedding model. It consumes one
// through the Embedder interface, so the same capability that indexed a
// chunk can later embed queries into the same vector space.
//
// Two implementation sub-packages exist:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//     (Ollama, LocalAI, vLLM, OpenAI itself)
//   - ai/mock: deterministic test double, no network
//
// Public constructors return the Embedder interface to keep callers off the
// concrete types; mock constructors return concrete types so tests can
// inject behavior and assert call counts.
package ai
