package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/server"
	"github.com/echoscribe/echoscribe/store"
	"github.com/echoscribe/echoscribe/textedit"
	"github.com/echoscribe/echoscribe/validation"
	"github.com/echoscribe/echoscribe/vocab"
)

type textEditRequest struct {
	// OldText selects every literal occurrence. Not needed when Start/End
	// pick the occurrence by range instead.
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
	// Target selects what gets edited: "transcript" (default) or "notes".
	Target string `json:"target" binding:"omitempty,oneof=transcript notes"`
	// PieceIndex restricts a transcript edit to one piece; nil edits all
	// pieces. Required for a range edit of the transcript.
	PieceIndex *int `json:"piece_index"`
	// Start/End replace exactly the byte range [start, end) instead of
	// matching on old_text.
	Start *int `json:"start"`
	End   *int `json:"end"`
	// DeriveVocabulary records the correction as a vocabulary entry so
	// future transcriptions get the term right.
	DeriveVocabulary bool `json:"derive_vocabulary"`
}

func (r *textEditRequest) rangeMode() bool {
	return r.Start != nil && r.End != nil
}

func (r *textEditRequest) validate() error {
	if r.Start != nil || r.End != nil {
		if r.Start == nil || r.End == nil {
			return apperrors.InvalidInput("start", "a range edit needs both start and end")
		}
		return nil
	}
	if r.OldText == "" {
		return apperrors.MissingField("old_text")
	}
	return nil
}

// editTranscript replaces text in the stored transcript or notes. Matching
// is exact, not a pattern: "C++ (v1)" finds "C++ (v1)". A start/end range
// replaces that one occurrence only.
func (h *Handler) editTranscript(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var req textEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}
	if err := req.validate(); err != nil {
		server.RespondWithError(c, err)
		return
	}

	rec, err := h.store.Recording(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	if req.Target == "notes" {
		h.editNotes(c, rec, req)
		return
	}

	if len(rec.Pieces) == 0 {
		server.RespondWithError(c, apperrors.Conflict("recording has no transcript"))
		return
	}

	oldText := req.OldText
	var pieces []store.TranscriptPiece
	switch {
	case req.rangeMode():
		if req.PieceIndex == nil {
			server.RespondWithError(c, apperrors.InvalidInput("piece_index", "a transcript range edit needs a piece index"))
			return
		}
		pieces, err = textedit.ApplyToPieceRange(rec.Pieces, *req.PieceIndex, *req.Start, *req.End, req.NewText)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		oldText = rec.Pieces[*req.PieceIndex].Content[*req.Start:*req.End]

	case req.PieceIndex != nil:
		index := *req.PieceIndex
		if index < 0 || index >= len(rec.Pieces) {
			server.RespondWithError(c, apperrors.InvalidInput("piece_index", "out of range"))
			return
		}
		pieces = append([]store.TranscriptPiece(nil), rec.Pieces...)
		pieces[index].Content = textedit.ReplaceAll(pieces[index].Content, req.OldText, req.NewText)

	default:
		pieces = textedit.ApplyToPieces(rec.Pieces, req.OldText, req.NewText)
	}

	patch := store.RecordingPatch{Pieces: &pieces}
	if err := h.store.MergeRecording(c.Request.Context(), id, patch); err != nil {
		server.RespondWithError(c, err)
		return
	}
	rec.Pieces = pieces

	if req.DeriveVocabulary {
		h.deriveVocabulary(c, oldText, req.NewText)
	}

	server.RespondOK(c, toResponse(rec))
}

// editNotes applies the substitution to the formatted notes instead of the
// transcript pieces.
func (h *Handler) editNotes(c *gin.Context, rec *store.Recording, req textEditRequest) {
	if rec.FormattedNotes == "" {
		server.RespondWithError(c, apperrors.Conflict("recording has no formatted notes"))
		return
	}

	oldText := req.OldText
	var notes string
	if req.rangeMode() {
		updated, err := textedit.ReplaceRange(rec.FormattedNotes, *req.Start, *req.End, req.NewText)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		oldText = rec.FormattedNotes[*req.Start:*req.End]
		notes = updated
	} else {
		notes = textedit.ReplaceAll(rec.FormattedNotes, req.OldText, req.NewText)
	}

	patch := store.RecordingPatch{FormattedNotes: &notes}
	if err := h.store.MergeRecording(c.Request.Context(), rec.ID, patch); err != nil {
		server.RespondWithError(c, err)
		return
	}
	rec.FormattedNotes = notes

	if req.DeriveVocabulary {
		h.deriveVocabulary(c, oldText, req.NewText)
	}

	server.RespondOK(c, toResponse(rec))
}

// deriveVocabulary stores the corrected term unless an entry for the word
// already exists (case-insensitive). Failures only log: the edit itself has
// already succeeded.
func (h *Handler) deriveVocabulary(c *gin.Context, oldText, newText string) {
	item := vocab.DeriveEntry(oldText, newText)
	if item.Word == "" {
		return
	}

	ctx := c.Request.Context()
	exists, err := h.store.HasVocabularyWord(ctx, item.Word)
	if err != nil {
		h.log.Warn("vocabulary lookup failed", logger.ErrorFields("has word", err))
		return
	}
	if exists {
		return
	}
	if err := h.store.InsertVocabularyItem(ctx, item); err != nil {
		h.log.Warn("failed to record vocabulary entry", logger.ErrorFields("insert", err))
	}
}
