package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable != false {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_NotFound_Success(t *testing.T) {
	err := NotFound("recording", "123")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.HTTPStatus)
	}
	if err.Details["resource"] != "recording" {
		t.Errorf("expected resource=recording, got %v", err.Details["resource"])
	}
	if err.Details["id"] != "123" {
		t.Errorf("expected id=123, got %v", err.Details["id"])
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("recording", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Storage("merge recording", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestAppError_Error_IncludesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal(cause)
	msg := err.Error()
	want := fmt.Sprintf("%s: %s (cause: boom)", err.Code, err.Message)
	if msg != want {
		t.Errorf("expected %q, got %q", want, msg)
	}
}

func TestIsTimeout_Success(t *testing.T) {
	if !IsTimeout(Timeout("transcribe")) {
		t.Error("expected Timeout error to satisfy IsTimeout")
	}
	if IsTimeout(RemoteService("transcription service", nil)) {
		t.Error("remote-service error must not satisfy IsTimeout")
	}
	if IsTimeout(stderrors.New("plain")) {
		t.Error("plain error must not satisfy IsTimeout")
	}
}

func TestIsTimeout_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("piece 2: %w", Timeout("transcribe"))
	if !IsTimeout(wrapped) {
		t.Error("expected wrapped timeout to satisfy IsTimeout")
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	err := MissingField("instruction")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeMissingField {
		t.Errorf("expected MISSING_FIELD, got %s", resp.Error.Code)
	}
	if resp.Error.Details["field"] != "instruction" {
		t.Errorf("expected field=instruction, got %v", resp.Error.Details["field"])
	}
}

func TestAsAppError_Success(t *testing.T) {
	appErr, ok := AsAppError(fmt.Errorf("wrap: %w", Conflict("run already active")))
	if !ok {
		t.Fatal("expected AsAppError to succeed")
	}
	if appErr.Code != ErrCodeConflict {
		t.Errorf("expected CONFLICT, got %s", appErr.Code)
	}
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("expected AsAppError to fail for plain error")
	}
}
