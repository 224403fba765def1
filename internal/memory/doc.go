// Package memory stores previous translations in a local SQLite database so
// repeated runs over the same deck do not resend unchanged text.
//
// The store uses modernc.org/sqlite in WAL mode with a busy timeout and a
// short retry loop around writes, so concurrent runs on one host can share
// the database. Translator decorates any translate.Translator with a
// read-through cache; validation failures are never stored.
package memory
