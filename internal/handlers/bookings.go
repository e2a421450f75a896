package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/queries"
	"groom-admin-backend/internal/resources"
)

type BookingsHandler struct {
	bookings *queries.Bookings
	scopes   *Scopes
}

func NewBookingsHandler(bookings *queries.Bookings, scopes *Scopes) *BookingsHandler {
	return &BookingsHandler{bookings: bookings, scopes: scopes}
}

// ListBookings godoc
// @Summary     List bookings
// @Description Returns one page of bookings. Filter by status, sort with sort-by=field-asc|desc.
// @Tags        bookings
// @Produce     json
// @Security    Bearer
// @Param       status  query string false "unconfirmed, confirmed, done or all"
// @Param       sort-by query string false "e.g. created_at-desc"
// @Param       page    query int    false "1-based page"
// @Success     200 {object} models.ListResponse[models.Booking]
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /bookings [get]
func (h *BookingsHandler) ListBookings(c *gin.Context) {
	values := c.Request.URL.Query()
	p := resources.ListParams{
		Filter: params.ParseFilter(values, params.StatusParam, "status"),
		SortBy: params.ParseSort(values, queries.DefaultBookingSort),
		Page:   params.ParsePage(values),
	}
	if !p.Filter.IsZero() && !models.BookingStatus(p.Filter.Value).Valid() {
		respondError(c, apperrors.NewValidationError(params.StatusParam, "must be unconfirmed, confirmed, done or all"), nil)
		return
	}

	page, err := h.bookings.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	pageCount := params.PageCount(page.Count)
	links := map[string]string{}
	if p.Page < pageCount {
		links["next"] = "?" + params.WithPage(values, p.Page+1).Encode()
	}
	if p.Page > 1 {
		links["prev"] = "?" + params.WithPage(values, p.Page-1).Encode()
	}

	c.JSON(http.StatusOK, models.ListResponse[models.Booking]{
		Data:      page.Items,
		Count:     page.Count,
		Page:      p.Page,
		PageCount: pageCount,
		Links:     links,
	})
}

// GetBooking godoc
// @Summary     Get a booking
// @Tags        bookings
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Booking ID"
// @Success     200 {object} models.BookingResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /bookings/{id} [get]
func (h *BookingsHandler) GetBooking(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.BookingResponse{
		Booking: booking,
		Actions: models.AvailableActions(booking.Status),
	})
}

// ConfirmBooking godoc
// @Summary     Confirm a booking
// @Description Moves an unconfirmed booking to confirmed.
// @Tags        bookings
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Booking ID"
// @Success     200 {object} models.MutationResponse[models.Booking]
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /bookings/{id}/confirm [post]
func (h *BookingsHandler) ConfirmBooking(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	scope, collector := h.scopes.New()
	booking, err := h.bookings.Confirm(c.Request.Context(), scope, id)
	if err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, booking, collector)
}

// CheckoutBooking godoc
// @Summary     Check out a booking
// @Description Moves a confirmed booking to done and records the paid amount.
// @Tags        bookings
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path int                    true "Booking ID"
// @Param       request body models.CheckoutRequest true "Paid amount"
// @Success     200 {object} models.MutationResponse[models.Booking]
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /bookings/{id}/checkout [post]
func (h *BookingsHandler) CheckoutBooking(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	scope, collector := h.scopes.New()
	booking, err := h.bookings.Checkout(c.Request.Context(), scope, id, req)
	if err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, booking, collector)
}

// DeleteBooking godoc
// @Summary     Delete a booking
// @Tags        bookings
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Booking ID"
// @Success     200 {object} models.MutationResponse[int64]
// @Failure     502 {object} models.ErrorResponse
// @Router      /bookings/{id} [delete]
func (h *BookingsHandler) DeleteBooking(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	scope, collector := h.scopes.New()
	if err := h.bookings.Delete(c.Request.Context(), scope, id); err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, id, collector)
}
