package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/queries"
)

type UsersHandler struct {
	users  *queries.Users
	scopes *Scopes
}

func NewUsersHandler(users *queries.Users, scopes *Scopes) *UsersHandler {
	return &UsersHandler{users: users, scopes: scopes}
}

// ListUsers godoc
// @Summary     List users
// @Tags        users
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ListResponse[models.User]
// @Failure     502 {object} models.ErrorResponse
// @Router      /users [get]
func (h *UsersHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.ListResponse[models.User]{Data: users, Count: int64(len(users))})
}

// GetUser godoc
// @Summary     Get a user
// @Tags        users
// @Produce     json
// @Security    Bearer
// @Param       id path string true "User ID"
// @Success     200 {object} models.User
// @Failure     404 {object} models.ErrorResponse
// @Router      /users/{id} [get]
func (h *UsersHandler) GetUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser godoc
// @Summary     Create a user
// @Description Creates the authentication identity and then the profile row. Needs the service-role key.
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.NewUser true "New user"
// @Success     201 {object} models.MutationResponse[models.User]
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /users [post]
func (h *UsersHandler) CreateUser(c *gin.Context) {
	var in models.NewUser
	if !bindJSON(c, &in) {
		return
	}
	scope, collector := h.scopes.New()
	user, err := h.users.Create(c.Request.Context(), scope, in)
	if err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusCreated, user, collector)
}

// UpdateUser godoc
// @Summary     Update a user
// @Description Accepts JSON or multipart/form-data (with an avatar file).
// @Tags        users
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       id              path     string true  "User ID"
// @Param       fullName        formData string false "Full name"
// @Param       isAdmin         formData bool   false "Admin flag"
// @Param       password        formData string false "New password"
// @Param       passwordConfirm formData string false "Password confirmation"
// @Param       avatar          formData file   false "Avatar image"
// @Success     200 {object} models.MutationResponse[models.User]
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /users/{id} [patch]
func (h *UsersHandler) UpdateUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.update(c, id)
}

// DeleteUser godoc
// @Summary     Delete a user
// @Description Deletes the profile row and then the authentication identity. Needs the service-role key.
// @Tags        users
// @Produce     json
// @Security    Bearer
// @Param       id path string true "User ID"
// @Success     200 {object} models.MutationResponse[string]
// @Failure     500 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /users/{id} [delete]
func (h *UsersHandler) DeleteUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	scope, collector := h.scopes.New()
	if err := h.users.Delete(c.Request.Context(), scope, id); err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, id.String(), collector)
}

func (h *UsersHandler) update(c *gin.Context, id uuid.UUID) {
	staff, ok := actor(c)
	if !ok {
		return
	}
	in, closeAvatar, ok := bindUserUpdate(c)
	if !ok {
		return
	}
	defer closeAvatar()
	in.ID = id

	scope, collector := h.scopes.New()
	user, err := h.users.Update(c.Request.Context(), scope, staff, in)
	if err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, user, collector)
}

// bindUserUpdate reads a user update from JSON or from a multipart form.
// Form fields that are absent stay nil.
func bindUserUpdate(c *gin.Context) (models.UserUpdate, func(), bool) {
	var in models.UserUpdate
	noop := func() {}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return in, noop, bindJSON(c, &in)
	}

	if v, ok := c.GetPostForm("fullName"); ok {
		in.FullName = &v
	}
	if v, ok := c.GetPostForm("isAdmin"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, apperrors.NewValidationError("isAdmin", "must be true or false"), nil)
			return in, noop, false
		}
		in.IsAdmin = &b
	}
	if v, ok := c.GetPostForm("password"); ok && v != "" {
		in.Password = &v
	}
	if v, ok := c.GetPostForm("passwordConfirm"); ok && v != "" {
		in.PasswordConfirm = &v
	}

	avatar, closeAvatar, err := formUpload(c, "avatar")
	if err != nil {
		respondError(c, err, nil)
		return in, noop, false
	}
	in.Avatar = avatar
	return in, closeAvatar, true
}
