// Package vocab merges the user-maintained term list into transcription
// prompts and derives new terms from confirmed transcript corrections.
package vocab

import (
	"fmt"
	"strings"
	"time"

	"github.com/echoscribe/echoscribe/store"
)

// BuildPrompt appends the vocabulary to the base transcription prompt. With
// an empty vocabulary the base prompt is returned unchanged. The function is
// pure and deterministic.
func BuildPrompt(basePrompt string, items []store.VocabularyItem) string {
	if len(items) == 0 {
		return basePrompt
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n--- Vocabulary ---\n")
	b.WriteString("Pay special attention to the spelling of these terms:\n")
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item.Word)
		if item.Description != "" {
			b.WriteString(": ")
			b.WriteString(item.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// DeriveEntry builds a vocabulary candidate from a user-confirmed correction.
// Callers must reject the candidate when an existing entry's word matches
// case-insensitively (see store.HasVocabularyWord).
func DeriveEntry(oldText, newText string) store.VocabularyItem {
	return store.VocabularyItem{
		ID:          time.Now().UnixMilli(),
		Word:        strings.TrimSpace(newText),
		Description: fmt.Sprintf("Corrected from %q", strings.TrimSpace(oldText)),
	}
}
