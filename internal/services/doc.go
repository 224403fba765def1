// Package services defines shared utilities consumed by the translation
// pipeline and its remote integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and slide positions for logging.
//   - Structured error markers plus the Wrap helper that keep failures
//     classifiable (configuration, content, infrastructure) after they have
//     crossed package boundaries.
//
// Remote clients live in subpackages (awstranslate, bedrock, llm). Each one
// maps its backend's rejection of a specific text onto ErrValidation so the
// pipeline can tell a skippable run from a fatal outage without inspecting
// provider error codes.
package services
