// Package deck walks a presentation slide by slide and mutates its text in
// place: every run is translated at most once, validation rejections leave
// the run untouched, and the notes policy decides per slide whether speaker
// notes are regenerated, translated or left alone.
//
// The package only depends on the translate capability interfaces, so the
// walker runs unchanged against Amazon Translate, Bedrock, an
// OpenAI-compatible endpoint or in-memory fakes.
package deck
