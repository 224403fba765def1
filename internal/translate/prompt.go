package translate

import (
	"fmt"
	"strings"

	"pptx-translator/internal/language"
)

// TranslationSystemPrompt frames the model for LLM-backed translation.
const TranslationSystemPrompt = "You are an expert translator fluent in multiple languages."

// NotesSystemPrompt frames the model for speaker-notes generation.
const NotesSystemPrompt = "You write speaker notes for presentation slides."

const defaultNotesInstruction = "Write short speaker notes (two to four sentences) in %s that a presenter " +
	"could read aloud for a slide with the content below. Respond with the notes only, without a heading."

// TranslationPrompt renders the user prompt for one run of text. terms are
// glossary pairs the model must honour.
func TranslationPrompt(req Request, terms [][2]string) string {
	var sb strings.Builder
	sb.WriteString("Translate [Text] into [Language]. Understand the meaning of [Text] and find relevant words ")
	sb.WriteString("that best suit a PowerPoint presentation. Respond with the translated text only.\n\n")
	if req.Source != "" && req.Source != AutoSource {
		fmt.Fprintf(&sb, "Source language = %s\n", displayName(req.Source))
	}
	fmt.Fprintf(&sb, "Language = %s\n", displayName(req.Target))
	if len(terms) > 0 {
		sb.WriteString("Always use these preferred translations:\n")
		for _, t := range terms {
			fmt.Fprintf(&sb, "- %s => %s\n", t[0], t[1])
		}
	}
	fmt.Fprintf(&sb, "Text = %s", req.Text)
	return sb.String()
}

// NotesPrompt renders the notes-generation prompt. A non-empty instruction
// replaces the default; "%s" in it receives the target language name.
func NotesPrompt(slideText, target, instruction string) string {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		instruction = defaultNotesInstruction
	}
	if strings.Contains(instruction, "%s") {
		instruction = fmt.Sprintf(instruction, displayName(target))
	}
	content := strings.TrimSpace(slideText)
	if content == "" {
		content = "(the slide has no text)"
	}
	return instruction + "\n\nSlide content:\n" + content
}

func displayName(code string) string {
	if lang, err := language.Lookup(code); err == nil {
		return fmt.Sprintf("%s (%s)", lang.Name, lang.Code)
	}
	return code
}
