package pipeline

import "github.com/echoscribe/echoscribe/store"

// ProgressEvent is published after every persisted state change of a
// transcription run, so clients can follow progress live.
type ProgressEvent struct {
	RecordingID int64                   `json:"recording_id"`
	Status      store.RecordingStatus   `json:"status"`
	Progress    int                     `json:"progress"`
	Pieces      []store.TranscriptPiece `json:"pieces,omitempty"`
}

// Publisher delivers progress events to interested clients. Implementations
// must not block; the pipeline calls Publish from its run loop.
type Publisher interface {
	Publish(ev ProgressEvent)
}
