// Package handlers contains the gin HTTP handlers for the ChemSAR API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemSAR/pkg/errors"
)

// errorResponse is the uniform error body returned by every endpoint.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeError maps an application error to its HTTP status and renders the
// uniform error body.
func writeError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if e, ok := err.(*errors.AppError); ok {
		appErr = e
	} else {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "internal error")
	}
	c.JSON(appErr.Code.HTTPStatus(), errorResponse{
		Code:    appErr.Code.String(),
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}

// bindJSON decodes the request body and renders a bad-request error on
// failure.  Returns false when the caller should stop.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    errors.ErrCodeBadRequest.String(),
			Message: "invalid request body",
			Detail:  err.Error(),
		})
		return false
	}
	return true
}
