package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/mandipulse/internal/domain/dto"
	"github.com/guttosm/mandipulse/internal/middleware"
	"github.com/guttosm/mandipulse/internal/service"
	"github.com/guttosm/mandipulse/internal/storage"
)

// Signup godoc
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.SignupRequest  true  "Account"
// @Success      201      {object}  dto.AuthResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      409      {object}  dto.ErrorResponse  "Email already registered"
// @Router       /api/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var in dto.SignupRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse("invalid JSON body", err).WithCode("invalid_json_body"))
		return
	}

	token, user, err := h.auth.Signup(c.Request.Context(), in.Name, in.Email, in.Password)
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(ve.Error(), nil).WithCode("invalid_input"))
		return
	case errors.Is(err, storage.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse("User already exists", nil).WithCode("email_taken"))
		return
	case err != nil:
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to create account", err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{Token: token, User: user})
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.LoginRequest  true  "Credentials"
// @Success      200      {object}  dto.AuthResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse  "Invalid credentials"
// @Router       /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in dto.LoginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse("invalid JSON body", err).WithCode("invalid_json_body"))
		return
	}

	token, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("Invalid credentials", nil).WithCode("invalid_credentials"))
		return
	}
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to log in", err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{Token: token})
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.AuthResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if errors.Is(err, storage.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse("user not found", nil).WithCode("not_found"))
		return
	}
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to load user", err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{User: user})
}
