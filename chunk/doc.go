// Package chunk slices canonical text into overlapping windows and
// assembles the document envelope handed to indexing.
//
// The splitter prefers natural boundaries (paragraph break, sentence end,
// line break, space) over hard cuts, but only when the boundary falls in
// the second half of the window. Overlap is subtracted from each accepted
// end to form the next start, floored one past the previous start so the
// walk always advances.
package chunk
