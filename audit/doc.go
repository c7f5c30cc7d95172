// Package audit captures stage-boundary events from the ingestion
// pipeline.
//
// Every payload passes through an allow-list before it is recorded:
// identifier and status fields pass as-is, free-text fields are replaced
// by derived counts, everything else is dropped. Document content never
// reaches a sink. Sinks are best-effort; a sink failure is logged and
// never fails the stage that emitted the event.
package audit
