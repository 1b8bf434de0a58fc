// Package aggregate counts composite code keys per document and collects
// section statistics and code descriptions across a corpus.
//
// A Document is an isolated partial result; a Corpus merges documents in the
// order it is given them, so sequential and parallel runs agree.
package aggregate
