package resources

import (
	"context"
	"log/slog"

	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/store"
)

type Plans struct {
	base
	tables store.Tables
}

func NewPlans(tables store.Tables, logger *slog.Logger) *Plans {
	return &Plans{base: newBase(logger), tables: tables}
}

func (p *Plans) List(ctx context.Context) ([]models.Plan, error) {
	raw, _, err := p.tables.Select(ctx, PlansTable, store.Query{
		Order: []store.Order{{Column: "id", Ascending: true}},
	})
	if err != nil {
		return nil, p.fail(ctx, "Error fetching plans", err)
	}
	plans, err := store.DecodeAll[models.Plan](raw)
	if err != nil {
		return nil, p.fail(ctx, "Error fetching plans", err)
	}
	return plans, nil
}

func (p *Plans) Create(ctx context.Context, in models.PlanInput) (models.Plan, error) {
	raw, err := p.tables.Insert(ctx, PlansTable, in)
	if err != nil {
		return models.Plan{}, p.fail(ctx, "Error adding plan", err)
	}
	plan, err := store.DecodeOne[models.Plan](raw)
	if err != nil {
		return models.Plan{}, p.fail(ctx, "Error adding plan", err)
	}
	return plan, nil
}

func (p *Plans) Update(ctx context.Context, id int64, in models.PlanInput) (models.Plan, error) {
	raw, err := p.tables.Update(ctx, PlansTable, in, store.Eq("id", id))
	if err != nil {
		return models.Plan{}, p.fail(ctx, "Error editing plan", err)
	}
	plan, err := store.DecodeOne[models.Plan](raw)
	if err != nil {
		return models.Plan{}, p.fail(ctx, "Error editing plan", err)
	}
	return plan, nil
}

func (p *Plans) Delete(ctx context.Context, id int64) error {
	if err := p.tables.Delete(ctx, PlansTable, store.Eq("id", id)); err != nil {
		return p.fail(ctx, "Error deleting plan", err)
	}
	return nil
}
