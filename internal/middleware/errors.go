package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/mandipulse/internal/domain/dto"
	"github.com/guttosm/mandipulse/internal/logger"
	"github.com/guttosm/mandipulse/internal/upstream"
)

// ErrorHandler renders errors that handlers attached with c.Error and did not
// answer themselves.
//
// Behavior:
//   - Runs after the handler chain.
//   - Does nothing if no errors were attached or a response was already written.
//   - A dto.ErrorResponse is sent as-is with status 500.
//   - Any other error is classified by upstream.HTTPStatus / upstream.Code,
//     so outbound-client failures get the same mapping everywhere.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	var resp dto.ErrorResponse
	if errors.As(err, &resp) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
		return
	}

	status := upstream.HTTPStatus(err)
	logError(c, status, err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(http.StatusText(status), err).WithCode(upstream.Code(err)))
}

// AbortWithError stops the chain and writes a standardized error body.
//
// Example:
//
//	middleware.AbortWithError(c, http.StatusBadRequest, "invalid limit", err)
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		logError(c, status, err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}

// AbortWithUpstreamError answers with the status and code the upstream
// policy assigns to err.
func AbortWithUpstreamError(c *gin.Context, message string, err error) {
	status := upstream.HTTPStatus(err)
	logError(c, status, err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err).WithCode(upstream.Code(err)))
}

func logError(c *gin.Context, status int, err error) {
	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Str("request_id", toString(rid)).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Err(err).
		Msg("request failed")
}
