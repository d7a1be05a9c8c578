package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/server"
	"github.com/echoscribe/echoscribe/store"
	"github.com/echoscribe/echoscribe/validation"
)

type notesRequest struct {
	Instruction string `json:"instruction" binding:"required"`
	Model       string `json:"model"`
}

// formatNotes turns a finished transcript into formatted notes. Formatting
// failures are errors, never stored as notes.
func (h *Handler) formatNotes(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	rec, err := h.store.Recording(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	transcript := combineTranscript(rec.Pieces)
	if strings.TrimSpace(transcript) == "" {
		server.RespondWithError(c, apperrors.Conflict("recording has no completed transcript"))
		return
	}

	model := req.Model
	if model == "" {
		model = h.selectedModel(c)
	}

	formatted, err := h.formatter.Format(c.Request.Context(), transcript, req.Instruction, model)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	patch := store.RecordingPatch{FormattedNotes: &formatted}
	if err := h.store.MergeRecording(c.Request.Context(), id, patch); err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := h.store.SetSetting(c.Request.Context(), store.SettingLastInstruction, req.Instruction); err != nil {
		h.log.Warn("failed to remember instruction", logger.ErrorFields("set setting", err))
	}

	server.RespondOK(c, gin.H{
		"recording_id":    id,
		"formatted_notes": formatted,
	})
}

// selectedModel resolves the notes model: the stored preference first, then
// the configured default.
func (h *Handler) selectedModel(c *gin.Context) string {
	value, found, err := h.store.Setting(c.Request.Context(), store.SettingSelectedModel)
	if err == nil && found && value != "" {
		return value
	}
	return h.llmModel
}
