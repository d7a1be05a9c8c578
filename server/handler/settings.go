package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/echoscribe/echoscribe/errors"
	"github.com/echoscribe/echoscribe/server"
	"github.com/echoscribe/echoscribe/store"
	"github.com/echoscribe/echoscribe/validation"
)

// settingKeys are the keys the API accepts.
var settingKeys = []string{
	store.SettingTranscriptionPrompt,
	store.SettingLastInstruction,
	store.SettingInstructionTemplates,
	store.SettingSelectedModel,
}

func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.store.Settings(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, settings)
}

// putSettings upserts the provided keys; keys not present in the body are
// left untouched.
func (h *Handler) putSettings(c *gin.Context) {
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}
	if len(body) == 0 {
		server.RespondWithError(c, apperrors.Validation("no settings provided"))
		return
	}

	v := validation.New()
	for key := range body {
		v.OneOf("key", key, settingKeys)
	}
	if err := v.Validate(); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	for key, value := range body {
		if err := h.store.SetSetting(ctx, key, value); err != nil {
			server.RespondWithError(c, err)
			return
		}
	}

	settings, err := h.store.Settings(ctx)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, settings)
}
