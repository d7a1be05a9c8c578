// Package handler implements the HTTP API: recordings and their
// transcription runs, live captures, the vocabulary, notes formatting,
// transcript edits, settings, and the progress event stream.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/echoscribe/echoscribe/capture"
	"github.com/echoscribe/echoscribe/logger"
	"github.com/echoscribe/echoscribe/notes"
	"github.com/echoscribe/echoscribe/pipeline"
	"github.com/echoscribe/echoscribe/sse"
	"github.com/echoscribe/echoscribe/store"
)

// Handler carries the API's dependencies.
type Handler struct {
	store     *store.Store
	pipeline  *pipeline.Pipeline
	formatter *notes.Formatter
	captures  *capture.Manager
	hub       *sse.Hub
	llmModel  string
	log       *logger.Logger
}

// Deps bundles the constructor arguments.
type Deps struct {
	Store     *store.Store
	Pipeline  *pipeline.Pipeline
	Formatter *notes.Formatter
	Captures  *capture.Manager
	Hub       *sse.Hub
	LLMModel  string
}

// New creates a Handler.
func New(d Deps) *Handler {
	return &Handler{
		store:     d.Store,
		pipeline:  d.Pipeline,
		formatter: d.Formatter,
		captures:  d.Captures,
		hub:       d.Hub,
		llmModel:  d.LLMModel,
		log:       logger.WithComponent("api"),
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/api/v1")

	v1.GET("/recordings", h.listRecordings)
	v1.POST("/recordings", h.uploadRecording)
	v1.GET("/recordings/:id", h.getRecording)
	v1.PATCH("/recordings/:id", h.renameRecording)
	v1.DELETE("/recordings/:id", h.deleteRecording)
	v1.GET("/recordings/:id/transcript", h.getTranscript)
	v1.POST("/recordings/:id/transcribe", h.transcribeRecording)
	v1.POST("/recordings/:id/pieces/:index/retry", h.retryPiece)
	v1.POST("/recordings/:id/notes", h.formatNotes)
	v1.POST("/recordings/:id/text-edit", h.editTranscript)

	v1.GET("/vocabulary", h.listVocabulary)
	v1.POST("/vocabulary", h.createVocabularyItem)
	v1.PUT("/vocabulary/:id", h.updateVocabularyItem)
	v1.DELETE("/vocabulary/:id", h.deleteVocabularyItem)

	v1.GET("/settings", h.getSettings)
	v1.PUT("/settings", h.putSettings)

	v1.POST("/captures", h.startCapture)
	v1.PUT("/captures/:id/fragments/:seq", h.appendFragment)
	v1.POST("/captures/:id/finish", h.finishCapture)
	v1.POST("/captures/:id/abort", h.abortCapture)

	v1.GET("/events", h.streamEvents)
}

// background returns a context for work that must outlive the request, such
// as a transcription run kicked off by the transcribe endpoint.
func (h *Handler) background() context.Context {
	return context.Background()
}
