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

// Package storage defines the audit store abstraction.
//
// The EventStore interface decouples the audit trail from its backing
// database so different backends can be used interchangeably. Public
// constructors in backend packages return the interface, not the
// concrete type:
//
//	store, err := badger.NewEventStore(path)  // returns storage.EventStore
//
// Events are append-only: the store accepts an event exactly once, keyed
// by event id, and serves reads indexed by workflow, category and time.
//
// All implementations must be safe for concurrent use and accept a
// context.Context on every operation.
package storage
