// Package preflight provides readiness checks that run before a deck is
// loaded: the input file, the output location, the state directory and the
// selected remote backends.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before touching the document and aborts
//     with a configuration error when any check fails.
//   - The CLI "pptx-translator preflight" command prints every result as a
//     table without translating anything.
//
// Backend checks are gated by the configured backends; unused ones are skipped.
package preflight
