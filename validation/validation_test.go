package validation

import (
	"strings"
	"testing"

	apperrors "github.com/echoscribe/echoscribe/errors"
)

func TestValidator_CollectsAllErrors(t *testing.T) {
	v := New().
		Required("name", "").
		Required("mime_type", "audio/webm").
		Min("seq", -1, 0)

	err := v.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Message, "name: is required") {
		t.Errorf("expected name error, got %q", err.Message)
	}
	if !strings.Contains(err.Message, "seq: must be at least 0") {
		t.Errorf("expected seq error, got %q", err.Message)
	}
	if strings.Contains(err.Message, "mime_type") {
		t.Errorf("mime_type passed but appears in %q", err.Message)
	}

	fields, ok := err.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", err.Details["fields"])
	}
}

func TestValidator_NoErrors(t *testing.T) {
	v := New().
		Required("word", "Kubernetes").
		MaxLength("word", "Kubernetes", 64).
		OneOf("backend", "openai", []string{"openai", "whisper"})

	if err := v.Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidator_OneOfSkipsEmpty(t *testing.T) {
	if err := New().OneOf("backend", "", []string{"openai"}).Validate(); err != nil {
		t.Errorf("expected empty value skipped, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("id", "1756400000000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 1756400000000 {
		t.Errorf("expected parsed id, got %d", id)
	}

	for _, bad := range []string{"", "abc", "0", "-5", "1.5"} {
		if _, err := ParseID("id", bad); !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
			t.Errorf("%q: expected INVALID_INPUT, got %v", bad, err)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type notesRequest struct {
		Instruction string `json:"instruction" validate:"required"`
		Model       string `json:"model" validate:"omitempty,max=128"`
	}

	if err := Validate(notesRequest{Instruction: "summarize"}); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}

	err := Validate(notesRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if !strings.Contains(appErr.Message, "instruction: is required") {
		t.Errorf("expected instruction error, got %q", appErr.Message)
	}
}
