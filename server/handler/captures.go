package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/server"
	"github.com/echoscribe/echoscribe/validation"
)

type startCaptureRequest struct {
	Name     string `json:"name" binding:"max=255"`
	MimeType string `json:"mime_type" binding:"required"`
}

func (h *Handler) startCapture(c *gin.Context) {
	var req startCaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	id, err := h.captures.Start(req.Name, req.MimeType)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, gin.H{"id": id})
}

// appendFragment stores one raw audio fragment. The body is the fragment
// bytes as produced by the browser's recorder.
func (h *Handler) appendFragment(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("seq", "must be an integer"))
		return
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", "could not read fragment"))
		return
	}

	if err := h.captures.Append(c.Request.Context(), id, seq, data); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) finishCapture(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	rec, err := h.captures.Finish(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, toResponse(rec))
}

func (h *Handler) abortCapture(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	if err := h.captures.Abort(c.Request.Context(), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}
