package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/queries"
)

type ServicesHandler struct {
	services *queries.Services
	scopes   *Scopes
}

func NewServicesHandler(services *queries.Services, scopes *Scopes) *ServicesHandler {
	return &ServicesHandler{services: services, scopes: scopes}
}

// ListServices godoc
// @Summary     List services
// @Tags        services
// @Produce     json
// @Security    Bearer
// @Param       show-home query string false "true, false or all"
// @Param       sort-by   query string false "e.g. name-asc"
// @Success     200 {object} models.ListResponse[models.Service]
// @Failure     502 {object} models.ErrorResponse
// @Router      /services [get]
func (h *ServicesHandler) ListServices(c *gin.Context) {
	values := c.Request.URL.Query()
	filter := params.ParseFilter(values, params.ShowHomeParam, "show_home")
	sortBy := params.ParseSort(values, queries.DefaultServiceSort)

	services, err := h.services.List(c.Request.Context(), filter, sortBy)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.ListResponse[models.Service]{
		Data:  services,
		Count: int64(len(services)),
	})
}

// GetService godoc
// @Summary     Get a service
// @Tags        services
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Service ID"
// @Success     200 {object} models.Service
// @Failure     404 {object} models.ErrorResponse
// @Router      /services/{id} [get]
func (h *ServicesHandler) GetService(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	service, err := h.services.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, service)
}

// CreateService godoc
// @Summary     Create a service
// @Description Creates the service row, uploads its icon and stores the icon URL.
// @Tags        services
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       name              formData string true  "Name"
// @Param       description       formData string true  "Description"
// @Param       short_description formData string false "Short description"
// @Param       show_home         formData bool   false "Show on the home page"
// @Param       icon              formData file   true  "Icon image"
// @Success     201 {object} models.MutationResponse[models.Service]
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /services [post]
func (h *ServicesHandler) CreateService(c *gin.Context) {
	showHome, err := formBool(c, "show_home")
	if err != nil {
		respondError(c, err, nil)
		return
	}
	icon, closeIcon, err := formUpload(c, "icon")
	if err != nil {
		respondError(c, err, nil)
		return
	}
	defer closeIcon()

	in := models.NewService{
		Name:             c.PostForm("name"),
		Description:      c.PostForm("description"),
		ShortDescription: c.PostForm("short_description"),
		ShowHome:         showHome,
		Icon:             icon,
	}

	scope, collector := h.scopes.New()
	service, err := h.services.Create(c.Request.Context(), scope, in)
	if err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusCreated, service, collector)
}

// UpdateService godoc
// @Summary     Update a service
// @Description Replaces the editable fields. The icon is kept when none is sent.
// @Tags        services
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       id                path     int    true  "Service ID"
// @Param       name              formData string true  "Name"
// @Param       description       formData string true  "Description"
// @Param       short_description formData string false "Short description"
// @Param       show_home         formData bool   false "Show on the home page"
// @Param       icon              formData file   false "New icon image"
// @Success     200 {object} models.MutationResponse[models.Service]
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /services/{id} [patch]
func (h *ServicesHandler) UpdateService(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	showHome, err := formBool(c, "show_home")
	if err != nil {
		respondError(c, err, nil)
		return
	}
	icon, closeIcon, err := formUpload(c, "icon")
	if err != nil {
		respondError(c, err, nil)
		return
	}
	defer closeIcon()

	patch := models.ServicePatch{
		Name:             c.PostForm("name"),
		Description:      c.PostForm("description"),
		ShortDescription: c.PostForm("short_description"),
		ShowHome:         showHome,
		Icon:             icon,
	}

	scope, collector := h.scopes.New()
	service, err := h.services.Update(c.Request.Context(), scope, id, patch)
	if err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, service, collector)
}

// DeleteService godoc
// @Summary     Delete a service
// @Tags        services
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Service ID"
// @Success     200 {object} models.MutationResponse[int64]
// @Failure     502 {object} models.ErrorResponse
// @Router      /services/{id} [delete]
func (h *ServicesHandler) DeleteService(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	scope, collector := h.scopes.New()
	if err := h.services.Delete(c.Request.Context(), scope, id); err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, id, collector)
}

// formUpload opens the multipart file field. A missing field yields a nil
// upload; the returned close func is always safe to call.
func formUpload(c *gin.Context, field string) (*models.Upload, func(), error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperrors.NewValidationError(field, "could not read the uploaded file")
	}
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, apperrors.NewValidationError(field, "could not read the uploaded file")
	}
	contentType := header.Header.Get("Content-Type")
	return &models.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        file,
	}, func() { file.Close() }, nil
}

func formBool(c *gin.Context, field string) (bool, error) {
	raw, ok := c.GetPostForm(field)
	if !ok || raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewValidationError(field, "must be true or false")
	}
	return v, nil
}
