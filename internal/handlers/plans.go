package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/queries"
)

type PlansHandler struct {
	plans  *queries.Plans
	scopes *Scopes
}

func NewPlansHandler(plans *queries.Plans, scopes *Scopes) *PlansHandler {
	return &PlansHandler{plans: plans, scopes: scopes}
}

// ListPlans godoc
// @Summary     List plans
// @Tags        plans
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ListResponse[models.Plan]
// @Failure     502 {object} models.ErrorResponse
// @Router      /plans [get]
func (h *PlansHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.ListResponse[models.Plan]{Data: plans, Count: int64(len(plans))})
}

// CreatePlan godoc
// @Summary     Create a plan
// @Tags        plans
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.PlanInput true "Plan"
// @Success     201 {object} models.MutationResponse[models.Plan]
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /plans [post]
func (h *PlansHandler) CreatePlan(c *gin.Context) {
	var in models.PlanInput
	if !bindJSON(c, &in) {
		return
	}
	scope, collector := h.scopes.New()
	plan, err := h.plans.Create(c.Request.Context(), scope, in)
	if err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusCreated, plan, collector)
}

// UpdatePlan godoc
// @Summary     Update a plan
// @Tags        plans
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path int              true "Plan ID"
// @Param       request body models.PlanInput true "Plan"
// @Success     200 {object} models.MutationResponse[models.Plan]
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /plans/{id} [patch]
func (h *PlansHandler) UpdatePlan(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var in models.PlanInput
	if !bindJSON(c, &in) {
		return
	}
	scope, collector := h.scopes.New()
	plan, err := h.plans.Update(c.Request.Context(), scope, id, in)
	if err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, plan, collector)
}

// DeletePlan godoc
// @Summary     Delete a plan
// @Tags        plans
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Plan ID"
// @Success     200 {object} models.MutationResponse[int64]
// @Failure     502 {object} models.ErrorResponse
// @Router      /plans/{id} [delete]
func (h *PlansHandler) DeletePlan(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	scope, collector := h.scopes.New()
	if err := h.plans.Delete(c.Request.Context(), scope, id); err != nil {
		respondError(c, err, collector.Notices())
		return
	}
	respondMutation(c, http.StatusOK, id, collector)
}
