// Package metadata canonicalizes document metadata ahead of chunking.
//
// The Normalizer is a pure transform over the raw field map produced by
// extraction: vendor key spellings collapse to canonical names, dates are
// rewritten to ISO-8601, string fields are cleaned, tags are case-folded
// and de-duplicated, and missing title, document_id and language are
// backfilled. The only I/O it performs is an optional read-only hash of
// the source file. Output is validated against a fixed schema and scored
// for completeness; validation warnings never block, errors do.
package metadata
