package handler

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/server"
	"github.com/echoscribe/echoscribe/store"
	"github.com/echoscribe/echoscribe/validation"
)

// recordingResponse is a Recording without its payload.
type recordingResponse struct {
	ID             int64                   `json:"id"`
	Name           string                  `json:"name"`
	Size           int64                   `json:"size"`
	MimeType       string                  `json:"mime_type"`
	Status         store.RecordingStatus   `json:"status"`
	Progress       int                     `json:"progress"`
	Pieces         []store.TranscriptPiece `json:"pieces"`
	FormattedNotes string                  `json:"formatted_notes,omitempty"`
}

func toResponse(rec *store.Recording) recordingResponse {
	return recordingResponse{
		ID:             rec.ID,
		Name:           rec.Name,
		Size:           rec.Size,
		MimeType:       rec.MimeType,
		Status:         rec.Status,
		Progress:       rec.Progress,
		Pieces:         rec.Pieces,
		FormattedNotes: rec.FormattedNotes,
	}
}

func (h *Handler) listRecordings(c *gin.Context) {
	summaries, err := h.store.RecordingSummaries(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, summaries)
}

// uploadRecording accepts a multipart upload with a "file" part and an
// optional "name" field.
func (h *Handler) uploadRecording(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		server.RespondWithError(c, apperrors.MissingField("file"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("file", "could not open upload"))
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("file", "could not read upload"))
		return
	}
	if len(payload) == 0 {
		server.RespondWithError(c, apperrors.InvalidInput("file", "upload is empty"))
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = fileHeader.Filename
	}
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	if v := validation.New().Required("name", name).MaxLength("name", name, 255); v.HasErrors() {
		server.RespondWithError(c, v.Validate())
		return
	}

	rec := &store.Recording{
		ID:       time.Now().UnixMilli(),
		Name:     name,
		Size:     int64(len(payload)),
		MimeType: mimeType,
		Payload:  payload,
		Status:   store.StatusNew,
	}
	if err := h.store.InsertRecording(c.Request.Context(), rec); err != nil {
		server.RespondWithError(c, err)
		return
	}

	h.log.Info("recording uploaded", logger.Fields(
		logger.FieldRecordingID, rec.ID,
		"size", rec.Size,
		"mime_type", rec.MimeType,
	))
	server.RespondCreated(c, toResponse(rec))
}

func (h *Handler) getRecording(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	rec, err := h.store.Recording(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toResponse(rec))
}

type renameRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

func (h *Handler) renameRecording(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		server.RespondWithError(c, apperrors.MissingField("name"))
		return
	}

	patch := store.RecordingPatch{Name: &name}
	if err := h.store.MergeRecording(c.Request.Context(), id, patch); err != nil {
		server.RespondWithError(c, err)
		return
	}

	rec, err := h.store.Recording(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toResponse(rec))
}

func (h *Handler) deleteRecording(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	if h.pipeline.Busy(id) {
		server.RespondWithError(c, apperrors.Conflict("recording is being transcribed"))
		return
	}
	if err := h.store.DeleteRecording(c.Request.Context(), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

// getTranscript returns the combined text of the completed pieces in order.
func (h *Handler) getTranscript(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	rec, err := h.store.Recording(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, gin.H{
		"recording_id": rec.ID,
		"status":       rec.Status,
		"transcript":   combineTranscript(rec.Pieces),
	})
}

func combineTranscript(pieces []store.TranscriptPiece) string {
	parts := make([]string, 0, len(pieces))
	for _, pc := range pieces {
		if pc.Status != store.PieceCompleted {
			continue
		}
		if text := strings.TrimSpace(pc.Content); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
