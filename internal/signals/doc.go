// Package signals delivers POSIX signals to process identifiers through the
// shell facade, so delivery failures surface as ordinary command results.
package signals
