package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/queries"
)

type ContactHandler struct {
	contact *queries.Contact
	scopes  *Scopes
}

func NewContactHandler(contact *queries.Contact, scopes *Scopes) *ContactHandler {
	return &ContactHandler{contact: contact, scopes: scopes}
}

// GetContact godoc
// @Summary     Get the contact details
// @Tags        contact
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Contact
// @Failure     502 {object} models.ErrorResponse
// @Router      /contact [get]
func (h *ContactHandler) GetContact(c *gin.Context) {
	contact, err := h.contact.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// UpdateContact godoc
// @Summary     Update the contact details
// @Description Only the fields present in the body are changed.
// @Tags        contact
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ContactPatch true "Changed fields"
// @Success     200 {object} models.MutationResponse[models.Contact]
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /contact [patch]
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	var patch models.ContactPatch
	if !bindJSON(c, &patch) {
		return
	}
	scope, collector := h.scopes.New()
	contact, err := h.contact.Update(c.Request.Context(), scope, patch)
	if err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, contact, collector)
}
