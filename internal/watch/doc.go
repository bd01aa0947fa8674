// Package watch implements the jsonwatch poll loop. It fetches a document
// from a source at a fixed interval, diffs each successfully parsed document
// against the previous one, and reports the changes to an output sink.
// Failed cycles are reported and skipped; only an unusable sink stops the
// loop early. An optional file trigger wakes the loop as soon as a watched
// file changes.
package watch
