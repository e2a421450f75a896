package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/middleware"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/notify"
	"groom-admin-backend/internal/querycache"
	"groom-admin-backend/internal/resources"
)

// Scopes builds the mutation scope of a request. Notices go to the
// request's collector, for the response, and to fanout.
type Scopes struct {
	cache  *querycache.Cache
	fanout notify.Notifier
}

func NewScopes(cache *querycache.Cache, fanout notify.Notifier) *Scopes {
	return &Scopes{cache: cache, fanout: fanout}
}

func (s *Scopes) New() (querycache.Scope, *notify.Collector) {
	collector := notify.NewCollector()
	return querycache.Scope{
		Cache:    s.cache,
		Notifier: notify.Multi{collector, s.fanout},
	}, collector
}

// respondError writes err with the status its kind maps to.
func respondError(c *gin.Context, err error, notices []models.Notice) {
	status := apperrors.HTTPStatus(err)
	resp := models.ErrorResponse{Error: err.Error(), Notices: notices}

	var (
		validation *apperrors.ValidationError
		partial    *apperrors.PartialCompletionError
		remote     *apperrors.RemoteOperationError
	)
	switch {
	case errors.As(err, &validation):
		resp.Error = "validation failed"
		resp.Details = validation.Fields
	case errors.As(err, &partial):
		resp.Error = partial.Message
		details := gin.H{
			"committed":   partial.Committed,
			"failed":      partial.Failed,
			"compensated": partial.Compensated,
		}
		if partial.CompensationErr != nil {
			details["compensation_error"] = partial.CompensationErr.Error()
		}
		resp.Details = details
	case errors.As(err, &remote):
		resp.Error = remote.Message
	case status == http.StatusInternalServerError:
		resp.Error = "internal server error"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

func respondMutation[T any](c *gin.Context, status int, data T, collector *notify.Collector) {
	c.JSON(status, models.MutationResponse[T]{Data: data, Notices: collector.Notices()})
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperrors.NewValidationError(name, "must be a positive integer"), nil)
		return 0, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apperrors.NewValidationError(name, "must be a valid uuid"), nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into v. Malformed bodies become validation errors.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var validation *apperrors.ValidationError
		if !errors.As(err, &validation) {
			err = apperrors.NewValidationError("body", "malformed JSON body")
		}
		respondError(c, err, nil)
		return false
	}
	return true
}

// actor is the signed-in staff member behind the request.
func actor(c *gin.Context) (resources.Actor, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return resources.Actor{}, false
	}
	return resources.Actor{ID: id, Token: middleware.Token(c)}, true
}
