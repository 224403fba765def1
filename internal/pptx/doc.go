// Package pptx reads, mutates and writes PowerPoint (Office Open XML) decks.
//
// Slide, notes and relationship parts are parsed into a namespace-preserving
// element tree so markup this package does not understand survives a round
// trip untouched. Only parts that were actually modified are re-serialised on
// Save; every other zip entry is copied byte-for-byte in its original order.
//
// Shapes are exposed as a closed set of variants (TextShape, TableShape,
// GroupShape, OtherShape) so callers can switch over them exhaustively.
// Text is reached through TextFrame -> Paragraph -> Run, mirroring DrawingML.
package pptx
