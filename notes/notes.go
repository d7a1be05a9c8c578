// Package notes turns an assembled transcript into structured meeting notes
// via a single call to the remote formatting service.
package notes

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/llm"
	"github.com/echoscribe/echoscribe/logger"
)

// Formatter produces formatted notes from a transcript. Unlike transcription,
// notes are formatted as one unit regardless of size, and there is no model
// escalation: a timeout surfaces directly as a failure.
type Formatter struct {
	provider llm.Provider
	timeout  time.Duration
	log      *logger.Logger
}

// NewFormatter creates a Formatter over the given provider. timeout bounds
// the single remote call.
func NewFormatter(p llm.Provider, timeout time.Duration) *Formatter {
	return &Formatter{
		provider: p,
		timeout:  timeout,
		log:      logger.WithComponent("notes"),
	}
}

// Format submits the transcript with the user's instruction and returns the
// formatted notes. Blank transcript or instruction is rejected before any
// remote call. Failures are returned as errors, never as the result text.
func (f *Formatter) Format(ctx context.Context, transcript, instruction, model string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", apperrors.MissingField("transcript")
	}
	if strings.TrimSpace(instruction) == "" {
		return "", apperrors.MissingField("instruction")
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	resp, err := f.provider.Complete(callCtx, llm.CompletionRequest{
		Model:        model,
		SystemPrompt: "You format meeting transcripts into clear, structured notes. Follow the user's instruction exactly. Respond with the notes only.",
		Messages: []llm.Message{
			{Role: "user", Content: buildPrompt(transcript, instruction)},
		},
	})
	if err != nil {
		f.log.Error("formatting failed", logger.ErrorFields("format", err))
		return "", err
	}

	f.log.Info("notes formatted", map[string]interface{}{
		logger.FieldModel:    resp.Model,
		logger.FieldDuration: time.Since(start).Milliseconds(),
	})
	return strings.TrimSpace(resp.Content), nil
}

func buildPrompt(transcript, instruction string) string {
	var b strings.Builder
	b.WriteString("Instruction:\n")
	b.WriteString(instruction)
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}
