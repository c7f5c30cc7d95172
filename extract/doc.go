// Package extract turns source files into raw text plus document metadata.
//
// A Registry maps file extensions to Extractor implementations and owns the
// validation ladder (existence, supported format, size ceiling) and the text
// post-processing shared by all formats. Only PDF ships by default; new
// formats register without touching the downstream stages.
package extract
