// Package store provides durable local persistence for echoscribe on SQLite.
//
// It owns four collections: recordings (one row per capture or upload,
// payload included), capture fragments (ephemeral, cleared once a capture is
// assembled), the user vocabulary, and settings (simple key-value).
package store

// RecordingStatus is the aggregate state of a recording's transcription run.
type RecordingStatus string

const (
	StatusNew          RecordingStatus = "new"
	StatusTranscribing RecordingStatus = "transcribing"
	StatusCompleted    RecordingStatus = "completed"
	StatusFailed       RecordingStatus = "failed"
)

// PieceStatus is the state of one transcript piece.
type PieceStatus string

const (
	PieceProcessing PieceStatus = "processing"
	PieceCompleted  PieceStatus = "completed"
	PieceFailed     PieceStatus = "failed"
)

// TranscriptPiece is the transcription result for one byte range of a
// recording. When Status is PieceFailed, Content holds the failure
// description rather than transcript text.
type TranscriptPiece struct {
	Index   int         `json:"index"`
	Content string      `json:"content"`
	Status  PieceStatus `json:"status"`
}

// Recording is one audio capture or upload. ID is the creation timestamp in
// Unix milliseconds and doubles as the sort key. Size, MimeType, and Payload
// are immutable once set.
type Recording struct {
	ID             int64
	Name           string
	Size           int64
	MimeType       string
	Payload        []byte
	Status         RecordingStatus
	Progress       int
	Pieces         []TranscriptPiece
	FormattedNotes string
}

// RecordingSummary is a Recording with the payload excluded, for listings.
type RecordingSummary struct {
	ID             int64
	Name           string
	Size           int64
	MimeType       string
	Status         RecordingStatus
	Progress       int
	Pieces         []TranscriptPiece
	FormattedNotes string
}

// RecordingPatch is a partial update to a recording. Nil fields are left
// untouched. The payload is deliberately not patchable.
type RecordingPatch struct {
	Name           *string
	Status         *RecordingStatus
	Progress       *int
	Pieces         *[]TranscriptPiece
	FormattedNotes *string
}

// Fragment is one raw audio chunk captured during a live recording.
type Fragment struct {
	RecordingID int64
	Seq         int
	Data        []byte
}

// VocabularyItem is one user-maintained term. ID is the creation timestamp in
// Unix milliseconds.
type VocabularyItem struct {
	ID          int64  `json:"id"`
	Word        string `json:"word"`
	Description string `json:"description,omitempty"`
}
