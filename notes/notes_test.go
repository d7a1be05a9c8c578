package notes

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/llm"
)

type fakeLLM struct {
	lastReq llm.CompletionRequest
	reply   string
	err     error
	calls   int
}

func (f *fakeLLM) Name() string                       { return "fake" }
func (f *fakeLLM) IsAvailable(_ context.Context) bool { return true }

func (f *fakeLLM) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply, Model: "fake-model"}, nil
}

func TestFormat_Success(t *testing.T) {
	p := &fakeLLM{reply: "  ## Notes\n- decided X  "}
	f := NewFormatter(p, time.Second)

	got, err := f.Format(context.Background(), "we decided X", "bullet points", "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "## Notes\n- decided X" {
		t.Errorf("expected trimmed notes, got %q", got)
	}
	if p.lastReq.Model != "m1" {
		t.Errorf("expected model m1, got %s", p.lastReq.Model)
	}
	prompt := p.lastReq.Messages[0].Content
	if !strings.Contains(prompt, "we decided X") || !strings.Contains(prompt, "bullet points") {
		t.Errorf("prompt missing transcript or instruction: %q", prompt)
	}
}

func TestFormat_BlankInputsRejectedBeforeRemoteCall(t *testing.T) {
	p := &fakeLLM{reply: "notes"}
	f := NewFormatter(p, time.Second)

	cases := []struct {
		name                    string
		transcript, instruction string
	}{
		{"empty transcript", "", "do it"},
		{"whitespace transcript", "   \n\t", "do it"},
		{"empty instruction", "text", ""},
		{"whitespace instruction", "text", "  "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.Format(context.Background(), c.transcript, c.instruction, "")
			if !apperrors.IsCode(err, apperrors.ErrCodeMissingField) {
				t.Errorf("expected MISSING_FIELD, got %v", err)
			}
		})
	}
	if p.calls != 0 {
		t.Errorf("validation failures must not reach the provider, got %d calls", p.calls)
	}
}

func TestFormat_ErrorIsNotResultText(t *testing.T) {
	p := &fakeLLM{err: apperrors.RemoteService("formatting service", nil)}
	f := NewFormatter(p, time.Second)

	got, err := f.Format(context.Background(), "transcript", "instruction", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if got != "" {
		t.Errorf("failure must not produce result text, got %q", got)
	}
}
