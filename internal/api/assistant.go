package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/mandipulse/internal/domain/dto"
)

// Ask godoc
// @Summary      Ask the farming assistant
// @Description  Text questions go to the chat model; image requests with imageUrl go to the vision model
// @Tags         assistant
// @Accept       json
// @Produce      json
// @Param        request  body      dto.AssistantRequest  true  "Question"
// @Success      200      {object}  dto.AssistantResponse
// @Failure      400      {object}  dto.ErrorResponse  "Invalid JSON body"
// @Failure      500      {object}  dto.ErrorResponse  "Missing credential"
// @Failure      502      {object}  dto.ErrorResponse  "Upstream failure"
// @Failure      504      {object}  dto.ErrorResponse  "Upstream timeout"
// @Router       /api/ai [post]
func (h *Handler) Ask(c *gin.Context) {
	var in dto.AssistantRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse("invalid JSON body", err).WithCode("invalid_json_body"))
		return
	}

	out, err := h.assistant.Ask(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
