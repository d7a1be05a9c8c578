package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/server"
	"github.com/echoscribe/echoscribe/store"
	"github.com/echoscribe/echoscribe/validation"
)

type vocabularyRequest struct {
	Word        string `json:"word" binding:"required,max=128"`
	Description string `json:"description" binding:"max=512"`
}

func (h *Handler) listVocabulary(c *gin.Context) {
	items, err := h.store.Vocabulary(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, items)
}

func (h *Handler) createVocabularyItem(c *gin.Context) {
	var req vocabularyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	word := strings.TrimSpace(req.Word)
	if word == "" {
		server.RespondWithError(c, apperrors.MissingField("word"))
		return
	}

	ctx := c.Request.Context()
	exists, err := h.store.HasVocabularyWord(ctx, word)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if exists {
		server.RespondWithError(c, apperrors.AlreadyExists("vocabulary word").WithDetail("word", word))
		return
	}

	item := store.VocabularyItem{
		ID:          time.Now().UnixMilli(),
		Word:        word,
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.store.InsertVocabularyItem(ctx, item); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, item)
}

func (h *Handler) updateVocabularyItem(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var req vocabularyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	item := store.VocabularyItem{
		ID:          id,
		Word:        strings.TrimSpace(req.Word),
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.store.UpdateVocabularyItem(c.Request.Context(), item); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, item)
}

func (h *Handler) deleteVocabularyItem(c *gin.Context) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := h.store.DeleteVocabularyItem(c.Request.Context(), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}
