package vector

// Operation statuses. StatusSimulated marks degraded-mode results, which
// must never be mistaken for genuine success.
const (
	StatusSuccess       = "success"
	StatusError         = "error"
	StatusSimulated     = "simulated"
	StatusNoChunks      = "no_chunks"
	StatusNoQuery       = "no_query"
	StatusNoIdentifiers = "no_identifiers"
)

// IndexResult reports an index or update call. Either all chunks committed
// or IndexedCount is zero; there is no partial state.
type IndexResult struct {
	Status       string
	Operation    Operation
	DocumentID   string
	IndexedCount int
	ChunkIDs     []string
	Error        string
}

// Match is one search hit. Distance is 1 minus cosine similarity, so
// results order by increasing distance.
type Match struct {
	Text     string
	Metadata map[string]string
	Distance float32
	ID       string
}

// SearchResult reports a search call.
type SearchResult struct {
	Status     string
	Operation  Operation
	Query      string
	Results    []Match
	TotalFound int
	Error      string
}

// DeleteResult reports a delete call. Deleting unknown identifiers is a
// no-op with DeletedCount zero, not an error.
type DeleteResult struct {
	Status       string
	Operation    Operation
	DocumentID   string
	DeletedCount int
	DeletedIDs   []string
	Error        string
}
