package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for the event record and its indices
const (
	eventPrefix         = "audevt"
	eventWorkflowPrefix = "audevtw"
	eventCategoryPrefix = "audevtc"
	eventTimePrefix     = "audevtt"
)

// makeEventKey generates a key for an event by id.
func makeEventKey(eventID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", eventPrefix, eventID))
}

// makeWorkflowKey generates a composite key for the workflow index.
// Format: prefix:workflowID:timestamp:eventID
func makeWorkflowKey(workflowID string, timestamp time.Time, eventID string) []byte {
	prefix := []byte(eventWorkflowPrefix + ":" + workflowID + ":")
	buf := make([]byte, len(prefix)+8+len(eventID))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], eventID)
	return buf
}

// makePartialWorkflowKey generates the scan prefix for one workflow.
func makePartialWorkflowKey(workflowID string) []byte {
	return []byte(eventWorkflowPrefix + ":" + workflowID + ":")
}

// makeCategoryKey generates a composite key for the category index.
// Format: prefix:category:timestamp:eventID
func makeCategoryKey(category string, timestamp time.Time, eventID string) []byte {
	prefix := []byte(eventCategoryPrefix + ":" + category + ":")
	buf := make([]byte, len(prefix)+8+len(eventID))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], eventID)
	return buf
}

// makePartialCategoryKey generates the scan prefix for one category.
func makePartialCategoryKey(category string) []byte {
	return []byte(eventCategoryPrefix + ":" + category + ":")
}

// makeTimeKey generates a composite key for the time index.
// Format: prefix:timestamp:eventID
func makeTimeKey(timestamp time.Time, eventID string) []byte {
	prefix := []byte(eventTimePrefix + ":")
	buf := make([]byte, len(prefix)+8+len(eventID))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], eventID)
	return buf
}

// makePartialTimeKey generates the boundary key for time range scans.
func makePartialTimeKey(timestamp time.Time) []byte {
	prefix := []byte(eventTimePrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}
