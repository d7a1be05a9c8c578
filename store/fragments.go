package store

import (
	"context"

	apperrors "github.com/echoscribe/echoscribe/errors"
)

// PutFragment stores one capture fragment, replacing any existing fragment
// with the same (recordingID, seq) key.
func (s *Store) PutFragment(ctx context.Context, f Fragment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fragments (recording_id, seq, data) VALUES (?, ?, ?)
		ON CONFLICT (recording_id, seq) DO UPDATE SET data = excluded.data
	`, f.RecordingID, f.Seq, f.Data)
	if err != nil {
		return apperrors.Storage("put fragment", err)
	}
	return nil
}

// Fragments returns all fragments for a recording ordered by sequence index.
func (s *Store) Fragments(ctx context.Context, recordingID int64) ([]Fragment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recording_id, seq, data
		FROM fragments
		WHERE recording_id = ?
		ORDER BY seq ASC
	`, recordingID)
	if err != nil {
		return nil, apperrors.Storage("list fragments", err)
	}
	defer rows.Close()

	var out []Fragment
	for rows.Next() {
		var f Fragment
		if err := rows.Scan(&f.RecordingID, &f.Seq, &f.Data); err != nil {
			return nil, apperrors.Storage("list fragments", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list fragments", err)
	}
	return out, nil
}

// DeleteFragments removes all fragments for a recording.
func (s *Store) DeleteFragments(ctx context.Context, recordingID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fragments WHERE recording_id = ?`, recordingID); err != nil {
		return apperrors.Storage("delete fragments", err)
	}
	return nil
}
