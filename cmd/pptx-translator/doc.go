// Command pptx-translator translates the text of a PowerPoint deck into
// another language and writes the result next to the input as
// <name>-<target>.pptx.
//
// Usage:
//
//	pptx-translator <source> <target> <input.pptx> [flags]
//	pptx-translator languages
//	pptx-translator preflight <input.pptx> <target>
//	pptx-translator terminology import <terms.csv>
//	pptx-translator memory stats|clear
//	pptx-translator config init|validate
package main
