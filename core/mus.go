package core

import (
	"maps"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// EventMUS is the MUS serializer for Event values stored in the audit store.
// The layout is fixed: event id, unix-microsecond timestamp, level, category,
// the four workflow identifiers, then the payload as a count-prefixed list of
// key/value pairs in sorted key order so marshaling is deterministic.
var EventMUS = eventMUS{}

type eventMUS struct{}

func (eventMUS) Size(e Event) (size int) {
	size = ord.String.Size(e.EventID)
	size += varint.Int64.Size(e.Timestamp.UnixMicro())
	size += ord.String.Size(e.Level)
	size += ord.String.Size(e.Category)
	size += ord.String.Size(e.Workflow.WorkflowID)
	size += ord.String.Size(e.Workflow.WorkflowName)
	size += ord.String.Size(e.Workflow.ExecutionID)
	size += ord.String.Size(e.Workflow.NodeID)
	size += varint.Int.Size(len(e.Payload))
	for k, v := range e.Payload {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	return size
}

func (eventMUS) Marshal(e Event, bs []byte) (n int) {
	n = ord.String.Marshal(e.EventID, bs)
	n += varint.Int64.Marshal(e.Timestamp.UnixMicro(), bs[n:])
	n += ord.String.Marshal(e.Level, bs[n:])
	n += ord.String.Marshal(e.Category, bs[n:])
	n += ord.String.Marshal(e.Workflow.WorkflowID, bs[n:])
	n += ord.String.Marshal(e.Workflow.WorkflowName, bs[n:])
	n += ord.String.Marshal(e.Workflow.ExecutionID, bs[n:])
	n += ord.String.Marshal(e.Workflow.NodeID, bs[n:])
	n += varint.Int.Marshal(len(e.Payload), bs[n:])
	for _, k := range slices.Sorted(maps.Keys(e.Payload)) {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(e.Payload[k], bs[n:])
	}
	return n
}

func (eventMUS) Unmarshal(bs []byte) (e Event, n int, err error) {
	var n1 int

	e.EventID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}

	var usec int64
	usec, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Timestamp = time.UnixMicro(usec).UTC()

	strs := []*string{
		&e.Level, &e.Category,
		&e.Workflow.WorkflowID, &e.Workflow.WorkflowName,
		&e.Workflow.ExecutionID, &e.Workflow.NodeID,
	}
	for _, s := range strs {
		*s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}

	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	if count > 0 {
		e.Payload = make(map[string]string, count)
		for i := 0; i < count; i++ {
			var k, v string
			k, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			e.Payload[k] = v
		}
	}

	return e, n, nil
}
