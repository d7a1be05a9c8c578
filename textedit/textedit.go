// Package textedit applies user corrections to transcript pieces and
// formatted notes.
package textedit

import (
	"regexp"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/store"
)

// ReplaceAll replaces every literal occurrence of old with new. The old text
// is escaped before matching so regexp metacharacters ("C++ (v1)" and the
// like) match only literally.
func ReplaceAll(text, old, new string) string {
	if old == "" {
		return text
	}
	re := regexp.MustCompile(regexp.QuoteMeta(old))
	return re.ReplaceAllLiteralString(text, new)
}

// ReplaceRange replaces the byte range [start, end) of text with new.
func ReplaceRange(text string, start, end int, new string) (string, error) {
	if start < 0 || end < start || end > len(text) {
		return "", apperrors.InvalidInput("range", "offset range is out of bounds")
	}
	return text[:start] + new + text[end:], nil
}

// ApplyToPieces replaces old with new across every completed piece and
// returns the updated slice. Failed pieces hold error descriptions, not
// transcript text, and are left untouched.
func ApplyToPieces(pieces []store.TranscriptPiece, old, new string) []store.TranscriptPiece {
	out := make([]store.TranscriptPiece, len(pieces))
	copy(out, pieces)
	for i := range out {
		if out[i].Status != store.PieceCompleted {
			continue
		}
		out[i].Content = ReplaceAll(out[i].Content, old, new)
	}
	return out
}

// ApplyToPieceRange replaces the byte range [start, end) within the piece at
// pieceIndex.
func ApplyToPieceRange(pieces []store.TranscriptPiece, pieceIndex, start, end int, new string) ([]store.TranscriptPiece, error) {
	if pieceIndex < 0 || pieceIndex >= len(pieces) {
		return nil, apperrors.InvalidInput("piece", "piece index is out of range")
	}
	out := make([]store.TranscriptPiece, len(pieces))
	copy(out, pieces)

	updated, err := ReplaceRange(out[pieceIndex].Content, start, end, new)
	if err != nil {
		return nil, err
	}
	out[pieceIndex].Content = updated
	return out, nil
}
