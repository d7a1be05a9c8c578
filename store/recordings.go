package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/echoscribe/echoscribe/errors"
)

// InsertRecording stores a new recording. It fails with ALREADY_EXISTS when a
// recording with the same id is present.
func (s *Store) InsertRecording(ctx context.Context, rec *Recording) error {
	pieces, err := marshalPieces(rec.Pieces)
	if err != nil {
		return apperrors.Storage("insert recording", err)
	}

	var exists bool
	row := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM recordings WHERE id = ?)`, rec.ID)
	if err := row.Scan(&exists); err != nil {
		return apperrors.Storage("insert recording", err)
	}
	if exists {
		return apperrors.AlreadyExists("recording").WithDetail("id", rec.ID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recordings (id, name, size, mime_type, payload, status, progress, pieces, formatted_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, rec.Size, rec.MimeType, rec.Payload,
		string(statusOrNew(rec.Status)), rec.Progress, pieces, rec.FormattedNotes)
	if err != nil {
		return apperrors.Storage("insert recording", err)
	}
	return nil
}

// Recording fetches one recording by id, payload included.
func (s *Store) Recording(ctx context.Context, id int64) (*Recording, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, size, mime_type, payload, status, progress, pieces, formatted_notes
		FROM recordings
		WHERE id = ?
	`, id)

	var rec Recording
	var status, pieces string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Size, &rec.MimeType, &rec.Payload,
		&status, &rec.Progress, &pieces, &rec.FormattedNotes); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("recording", strconv.FormatInt(id, 10))
		}
		return nil, apperrors.Storage("get recording", err)
	}
	rec.Status = RecordingStatus(status)
	if err := json.Unmarshal([]byte(pieces), &rec.Pieces); err != nil {
		return nil, apperrors.Storage("get recording", fmt.Errorf("decode pieces: %w", err))
	}
	return &rec, nil
}

// RecordingSummaries returns all recordings, newest first, without payloads.
func (s *Store) RecordingSummaries(ctx context.Context) ([]RecordingSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, size, mime_type, status, progress, pieces, formatted_notes
		FROM recordings
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, apperrors.Storage("list recordings", err)
	}
	defer rows.Close()

	var out []RecordingSummary
	for rows.Next() {
		var sum RecordingSummary
		var status, pieces string
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Size, &sum.MimeType,
			&status, &sum.Progress, &pieces, &sum.FormattedNotes); err != nil {
			return nil, apperrors.Storage("list recordings", err)
		}
		sum.Status = RecordingStatus(status)
		if err := json.Unmarshal([]byte(pieces), &sum.Pieces); err != nil {
			return nil, apperrors.Storage("list recordings", fmt.Errorf("decode pieces: %w", err))
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list recordings", err)
	}
	return out, nil
}

// MergeRecording applies a partial update. It fails with NOT_FOUND when the
// recording is absent. Size, mime type, and payload are immutable and cannot
// be merged.
func (s *Store) MergeRecording(ctx context.Context, id int64, patch RecordingPatch) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Progress != nil {
		sets = append(sets, "progress = ?")
		args = append(args, *patch.Progress)
	}
	if patch.Pieces != nil {
		pieces, err := marshalPieces(*patch.Pieces)
		if err != nil {
			return apperrors.Storage("merge recording", err)
		}
		sets = append(sets, "pieces = ?")
		args = append(args, pieces)
	}
	if patch.FormattedNotes != nil {
		sets = append(sets, "formatted_notes = ?")
		args = append(args, *patch.FormattedNotes)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		"UPDATE recordings SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return apperrors.Storage("merge recording", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("merge recording", err)
	}
	if n == 0 {
		return apperrors.NotFound("recording", strconv.FormatInt(id, 10))
	}
	return nil
}

// DeleteRecording removes a recording and any leftover capture fragments.
func (s *Store) DeleteRecording(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id); err != nil {
		return apperrors.Storage("delete recording", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fragments WHERE recording_id = ?`, id); err != nil {
		return apperrors.Storage("delete recording", err)
	}
	return nil
}

func marshalPieces(pieces []TranscriptPiece) (string, error) {
	if pieces == nil {
		pieces = []TranscriptPiece{}
	}
	b, err := json.Marshal(pieces)
	if err != nil {
		return "", fmt.Errorf("encode pieces: %w", err)
	}
	return string(b), nil
}

func statusOrNew(st RecordingStatus) RecordingStatus {
	if st == "" {
		return StatusNew
	}
	return st
}
