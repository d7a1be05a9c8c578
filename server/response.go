package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/echoscribe/echoscribe/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError derives the status and body from an *apperrors.AppError;
// anything else becomes a generic 500.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondCreated sends a 201 response wrapping data.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}

// RespondAccepted sends a 202 response wrapping data.
func RespondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, DataResponse{Data: data})
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
