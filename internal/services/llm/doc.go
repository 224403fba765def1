// Package llm talks to an OpenAI-compatible chat completion endpoint
// (OpenRouter by default) and adapts it to the deck translation capabilities.
//
// Client.Complete returns plain text and backs both Translator and
// NotesGenerator; Client.HealthCheck is used by the preflight command.
// Replies are stripped of code fences, "Translation:" labels and wrapping
// quotes before they reach the deck.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). HTTP 400/413/422 mean the prompt itself was rejected and surface as
// translate.ErrValidation without retrying. Context cancellation aborts retries
// immediately.
//
// # Terminology
//
// There is no server-side glossary. ImportTerminology parses the CSV locally
// and Translate injects the matching term pairs into the prompt whenever the
// request names that terminology.
package llm
