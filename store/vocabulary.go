package store

import (
	"context"
	"database/sql"
	"strconv"

	apperrors "github.com/echoscribe/echoscribe/errors"
)

// InsertVocabularyItem stores a new vocabulary term.
func (s *Store) InsertVocabularyItem(ctx context.Context, item VocabularyItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vocabulary (id, word, description) VALUES (?, ?, ?)
	`, item.ID, item.Word, item.Description)
	if err != nil {
		return apperrors.Storage("insert vocabulary item", err)
	}
	return nil
}

// Vocabulary returns all terms ordered by creation time.
func (s *Store) Vocabulary(ctx context.Context) ([]VocabularyItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, word, description FROM vocabulary ORDER BY id ASC
	`)
	if err != nil {
		return nil, apperrors.Storage("list vocabulary", err)
	}
	defer rows.Close()

	var out []VocabularyItem
	for rows.Next() {
		var item VocabularyItem
		if err := rows.Scan(&item.ID, &item.Word, &item.Description); err != nil {
			return nil, apperrors.Storage("list vocabulary", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list vocabulary", err)
	}
	return out, nil
}

// UpdateVocabularyItem replaces a term's word and description.
func (s *Store) UpdateVocabularyItem(ctx context.Context, item VocabularyItem) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE vocabulary SET word = ?, description = ? WHERE id = ?
	`, item.Word, item.Description, item.ID)
	if err != nil {
		return apperrors.Storage("update vocabulary item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("update vocabulary item", err)
	}
	if n == 0 {
		return apperrors.NotFound("vocabulary item", strconv.FormatInt(item.ID, 10))
	}
	return nil
}

// DeleteVocabularyItem removes a term.
func (s *Store) DeleteVocabularyItem(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM vocabulary WHERE id = ?`, id); err != nil {
		return apperrors.Storage("delete vocabulary item", err)
	}
	return nil
}

// HasVocabularyWord reports whether a term with the given word exists,
// compared case-insensitively.
func (s *Store) HasVocabularyWord(ctx context.Context, word string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM vocabulary WHERE LOWER(word) = LOWER(?) LIMIT 1
	`, word)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, apperrors.Storage("check vocabulary word", err)
	}
	return true, nil
}
