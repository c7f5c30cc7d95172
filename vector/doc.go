// Package vector embeds chunks and runs CRUD plus similarity search
// against the vector store.
//
// All four operations return structured result objects rather than bare
// errors: backend failures surface as status "error" so the caller can
// decide whether to retry. When the store or the embedding capability is
// unavailable the index runs degraded and every operation reports status
// "simulated", structurally valid but programmatically distinguishable
// from genuine success.
package vector
