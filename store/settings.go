package store

import (
	"context"
	"database/sql"

	apperrors "github.com/echoscribe/echoscribe/errors"
)

// Well-known settings keys.
const (
	SettingTranscriptionPrompt  = "transcription_prompt"
	SettingLastInstruction      = "last_instruction"
	SettingInstructionTemplates = "instruction_templates"
	SettingSelectedModel        = "selected_model"
)

// Setting returns the value for a key, with found=false when the key is
// absent.
func (s *Store) Setting(ctx context.Context, key string) (value string, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, apperrors.Storage("get setting", err)
	}
	return value, true, nil
}

// SetSetting stores a value under a key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return apperrors.Storage("set setting", err)
	}
	return nil
}

// Settings returns all stored settings.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, apperrors.Storage("list settings", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, apperrors.Storage("list settings", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list settings", err)
	}
	return out, nil
}
