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

package badger

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tessella/docpipe/core"
	"github.com/tessella/docpipe/storage"
)

// EventStore implements storage.EventStore for BadgerDB. The store owns
// its backend: Close closes the database.
type EventStore struct {
	backend *Backend
}

var _ storage.EventStore = (*EventStore)(nil)

// NewEventStore opens an on-disk event store at path.
func NewEventStore(path string) (storage.EventStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &EventStore{backend: backend}, nil
}

// newEventStore wraps an already-open backend.
func newEventStore(backend *Backend) *EventStore {
	return &EventStore{backend: backend}
}

// Close closes the backing database.
func (s *EventStore) Close() error {
	return s.backend.Close()
}

// AddEvent stores an event plus its workflow, category and time index
// entries in one transaction. Events are append-only: a second write
// under the same id fails with ErrDuplicateEvent.
func (s *EventStore) AddEvent(ctx context.Context, event *core.Event) error {
	if err := core.ValidateEvent(event); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEventKey(event.EventID)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateEvent
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := tx.Set(key, storage.MarshalEvent(event)); err != nil {
			return err
		}

		id := []byte(event.EventID)
		if event.Workflow.WorkflowID != "" {
			wfKey := makeWorkflowKey(event.Workflow.WorkflowID, event.Timestamp, event.EventID)
			if err := tx.Set(wfKey, id); err != nil {
				return err
			}
		}
		catKey := makeCategoryKey(event.Category, event.Timestamp, event.EventID)
		if err := tx.Set(catKey, id); err != nil {
			return err
		}
		timeKey := makeTimeKey(event.Timestamp, event.EventID)
		if err := tx.Set(timeKey, id); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// GetEvent retrieves a single event by id.
func (s *EventStore) GetEvent(ctx context.Context, eventID string) (*core.Event, error) {
	var event *core.Event
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		event, err = readEvent(tx, makeEventKey(eventID))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// EventsByWorkflow retrieves every event of one workflow, ordered by
// timestamp ascending via the index key layout.
func (s *EventStore) EventsByWorkflow(ctx context.Context, workflowID string) ([]*core.Event, error) {
	if workflowID == "" {
		return nil, storage.ErrInvalidQuery
	}
	return s.collectByIndex(makePartialWorkflowKey(workflowID), nil, 0)
}

// EventsByCategory retrieves events of one category ordered by timestamp
// ascending, up to limit results.
func (s *EventStore) EventsByCategory(ctx context.Context, category string, limit int) ([]*core.Event, error) {
	if category == "" {
		return nil, storage.ErrInvalidQuery
	}
	return s.collectByIndex(makePartialCategoryKey(category), nil, limit)
}

// EventsByTimeRange retrieves events where start <= Timestamp < end.
func (s *EventStore) EventsByTimeRange(ctx context.Context, start, end time.Time) ([]*core.Event, error) {
	if end.Before(start) {
		return nil, storage.ErrInvalidQuery
	}
	return s.collectByIndex(makePartialTimeKey(start), makePartialTimeKey(end), 0)
}

// collectByIndex scans an index from the seek key, stopping at the
// exclusive stop key when given, and resolves each entry to its event.
// Index keys embed BigEndian timestamps, so iteration order is ascending
// time order.
func (s *EventStore) collectByIndex(seek, stop []byte, limit int) ([]*core.Event, error) {
	var events []*core.Event

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		if stop == nil {
			opts.Prefix = seek
		} else {
			opts.Prefix = []byte(eventTimePrefix + ":")
		}
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(seek); iter.Valid(); iter.Next() {
			if stop != nil && bytes.Compare(iter.Item().Key(), stop) >= 0 {
				break
			}
			if limit > 0 && len(events) >= limit {
				break
			}

			var eventID string
			err := iter.Item().Value(func(val []byte) error {
				eventID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			event, err := readEvent(tx, makeEventKey(eventID))
			if err != nil {
				return err
			}
			events = append(events, event)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return events, nil
}

// readEvent reads and unmarshals one event record.
func readEvent(tx *badger.Txn, key []byte) (*core.Event, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var event *core.Event
	err = item.Value(func(val []byte) error {
		var err error
		event, err = storage.UnmarshalEvent(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}
