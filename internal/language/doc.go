// Package language holds the closed table of supported translation languages.
//
// Each entry pairs the short code accepted on the command line and by the
// translation backends ("pt", "zh-TW") with the OOXML locale identifier
// written into run properties (a:rPr lang="pt-BR"). Codes are canonicalised
// with golang.org/x/text/language before lookup, so "ZH-tw" resolves to
// "zh-TW". A code absent from the table is a configuration error.
package language
