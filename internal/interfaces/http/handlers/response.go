// Package handlers implements the gin handlers of the suitability HTTP API.
package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/suitability/pkg/errors"
	"github.com/turtacn/suitability/pkg/logger"
)

// sendError writes err as an ErrorResponse with its mapped status code.
// Server-side failures are logged and attached to the context for the tracing middleware;
// client errors are not.
func sendError(c *gin.Context, log logger.Logger, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error(c.Request.Context(), "Request failed", err,
			logger.String("method", c.Request.Method),
			logger.String("route", c.FullPath()),
		)
	}
	c.JSON(status, errors.ToErrorResponse(err))
}

// bindJSON decodes the request body into dst. An empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.ErrInvalidRequest("request body is not valid JSON").WithCause(err)
	}
	return nil
}
