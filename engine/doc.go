// Package engine exposes the ingestion stages to a hosting workflow
// engine.
//
// Each stage implements the Processor contract: execute a configured node
// against an execution context and produce a result payload, or fail with
// a typed error. Configurations are validated before scheduling; unknown
// keys are rejected explicitly. Concrete processors are selected through
// a Registry keyed by logical stage name.
package engine
