package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"groom-admin-backend/internal/middleware"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/resources"
)

type AuthHandler struct {
	auth  *resources.Auth
	users *UsersHandler
}

func NewAuthHandler(auth *resources.Auth, users *UsersHandler) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// Login godoc
// @Summary     Sign in
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.LoginRequest true "Credentials"
// @Success     200 {object} models.Session
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Logout godoc
// @Summary     Sign out
// @Tags        auth
// @Security    Bearer
// @Success     204
// @Failure     502 {object} models.ErrorResponse
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), middleware.Token(c)); err != nil {
		respondError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCurrentUser godoc
// @Summary     Get the signed-in user
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.User
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /auth/user [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), middleware.Token(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser godoc
// @Summary     Update the signed-in user
// @Description Changes the name, avatar or password of the signed-in account.
// @Tags        auth
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       fullName        formData string false "Full name"
// @Param       password        formData string false "New password"
// @Param       passwordConfirm formData string false "Password confirmation"
// @Param       avatar          formData file   false "Avatar image"
// @Success     200 {object} models.MutationResponse[models.User]
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /auth/user [patch]
func (h *AuthHandler) UpdateCurrentUser(c *gin.Context) {
	staff, ok := actor(c)
	if !ok {
		return
	}
	h.users.update(c, staff.ID)
}
