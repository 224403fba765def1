// Package pipeline runs one deck translation end to end: language
// validation, preflight, document load, terminology import, the slide walk
// and the atomic save to the derived output path.
//
// Backends are assembled from configuration by NewBackends; tests pass
// in-memory fakes through Backends directly.
package pipeline
