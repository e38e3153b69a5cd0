// Package escape describes how text must be escaped before it is handed to a
// particular shell dialect.
//
// A Context pairs the set of characters a dialect treats specially with the
// character that neutralizes them. Strategies derived from a Context either wrap
// the whole token in double quotes or prefix each special character, optionally
// rewriting newlines so multi-line values survive as a single shell word.
package escape
