package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/server"
	"github.com/echoscribe/echoscribe/sse"
	"github.com/echoscribe/echoscribe/store"
	"github.com/echoscribe/echoscribe/validation"
)

// transcribeRecording starts a transcription run in the background and
// answers 202; progress arrives over the event stream. A recording that is
// already transcribed answers 200 immediately.
func (h *Handler) transcribeRecording(c *gin.Context) {
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
	if rec.Status == store.StatusCompleted {
		server.RespondOK(c, toResponse(rec))
		return
	}
	if h.pipeline.Busy(id) {
		server.RespondWithError(c, apperrors.Conflict("transcription already running"))
		return
	}

	go func() {
		if _, err := h.pipeline.Run(h.background(), id); err != nil {
			h.log.Error("transcription run failed", logger.Fields(
				logger.FieldRecordingID, id,
				logger.FieldError, err.Error(),
			))
		}
	}()

	server.RespondAccepted(c, gin.H{
		"id":     id,
		"status": store.StatusTranscribing,
	})
}

// retryPiece re-runs one piece synchronously and returns the updated
// recording.
func (h *Handler) retryPiece(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("index", "must be an integer"))
		return
	}

	rec, err := h.pipeline.RetryPiece(c.Request.Context(), id, index)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toResponse(rec))
}

// streamEvents serves the SSE progress stream. An optional recording_id
// query parameter narrows the stream to one recording.
func (h *Handler) streamEvents(c *gin.Context) {
	var recordingID int64
	if raw := c.Query("recording_id"); raw != "" {
		id, err := validation.ParseID("recording_id", raw)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		recordingID = id
	}

	clientID := c.GetString("request_id")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	c.Status(http.StatusOK)
	sse.ServeSSE(h.hub, c.Writer, c.Request, clientID, recordingID)
}
