package handlers

import (
	"net/http"

	"invoicehub/internal/api/middleware"
	"invoicehub/internal/services"
	"invoicehub/internal/transport/dto"

	"github.com/gin-gonic/gin"
)

const userNotFound = "User not found"

// UserHandler holds dependencies for account operations.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register godoc
// @Summary      Register an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user body      dto.RegisterRequest true "Credentials"
// @Success      201 {object}  dto.UserResponse
// @Failure      400 {object}  map[string]any "Validation failed"
// @Failure      409 {object}  map[string]string "Email already registered"
// @Router       /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body  dto.LoginRequest true "Credentials"
// @Success      200 {object}  dto.LoginResponse
// @Failure      400 {object}  map[string]string "Invalid request body"
// @Failure      401 {object}  map[string]string "Invalid email or password"
// @Router       /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the bearer token used for this request.
// @Tags         auth
// @Success      204 "No Content"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (h *UserHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.userService.Logout(c.Request.Context(), &dto.LogoutRequest{TokenID: claims.TokenID, ExpiresAt: claims.ExpiresAt})
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfile godoc
// @Summary      Get the current user
// @Tags         users
// @Produce      json
// @Success      200 {object}  dto.UserResponse
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      404 {object}  map[string]string "User not found"
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), &dto.GetUserByIdRequest{ID: userID})
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Onboard godoc
// @Summary      Complete the profile
// @Description  Stores the name and address used as the default invoice issuer.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        profile body  dto.OnboardRequest true "Profile"
// @Success      200 {object}  dto.UserResponse
// @Failure      400 {object}  map[string]any "Validation failed"
// @Failure      401 {object}  map[string]string "Unauthorized"
// @Failure      404 {object}  map[string]string "User not found"
// @Router       /users/me/onboarding [put]
// @Security     BearerAuth
func (h *UserHandler) Onboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.OnboardRequest
	if !bindJSON(c, &req) {
		return
	}
	req.UserId = userID

	user, err := h.userService.Onboard(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
