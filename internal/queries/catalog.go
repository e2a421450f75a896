package queries

import (
	"context"

	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/querycache"
	"groom-admin-backend/internal/resources"
	"groom-admin-backend/internal/validation"
)

type servicePatch struct {
	id    int64
	patch models.ServicePatch
}

type Services struct {
	cache  *querycache.Cache
	client ServiceClient

	create *querycache.Mutation[models.NewService, models.Service]
	update *querycache.Mutation[servicePatch, models.Service]
	remove *querycache.Mutation[int64, int64]
}

func NewServices(cache *querycache.Cache, client ServiceClient) *Services {
	invalidates := []string{resources.ServicesTable}
	return &Services{
		cache:  cache,
		client: client,
		create: querycache.NewMutation(querycache.MutationConfig[models.NewService, models.Service]{
			Name:           "create_service",
			Fn:             client.Create,
			Invalidates:    invalidates,
			SuccessMessage: func(models.Service) string { return "New service created successfully!" },
		}),
		update: querycache.NewMutation(querycache.MutationConfig[servicePatch, models.Service]{
			Name: "update_service",
			Fn: func(ctx context.Context, in servicePatch) (models.Service, error) {
				return client.Update(ctx, in.id, in.patch)
			},
			Invalidates:    invalidates,
			SuccessMessage: func(models.Service) string { return "Service updated successfully!" },
		}),
		remove: querycache.NewMutation(querycache.MutationConfig[int64, int64]{
			Name: "delete_service",
			Fn: func(ctx context.Context, id int64) (int64, error) {
				return id, client.Delete(ctx, id)
			},
			Invalidates:    invalidates,
			SuccessMessage: func(int64) string { return "Service deleted successfully" },
		}),
	}
}

func (s *Services) List(ctx context.Context, filter params.Filter, sortBy params.Sort) ([]models.Service, error) {
	key := querycache.ListKey(resources.ServicesTable, filter, sortBy, 0)
	return querycache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]models.Service, error) {
		return s.client.List(ctx, filter, sortBy)
	})
}

func (s *Services) Get(ctx context.Context, id int64) (models.Service, error) {
	return querycache.Fetch(ctx, s.cache, querycache.DetailKey(resources.ServicesTable, id),
		func(ctx context.Context) (models.Service, error) {
			return s.client.Get(ctx, id)
		})
}

func (s *Services) Create(ctx context.Context, scope querycache.Scope, in models.NewService) (models.Service, error) {
	if err := validation.Struct(in); err != nil {
		return models.Service{}, err
	}
	return s.create.Mutate(ctx, scope, in)
}

func (s *Services) Update(ctx context.Context, scope querycache.Scope, id int64, patch models.ServicePatch) (models.Service, error) {
	if err := validation.Struct(patch); err != nil {
		return models.Service{}, err
	}
	return s.update.Mutate(ctx, scope, servicePatch{id: id, patch: patch})
}

func (s *Services) Delete(ctx context.Context, scope querycache.Scope, id int64) error {
	_, err := s.remove.Mutate(ctx, scope, id)
	return err
}

type planUpdate struct {
	id    int64
	input models.PlanInput
}

type Plans struct {
	cache  *querycache.Cache
	client PlanClient

	create *querycache.Mutation[models.PlanInput, models.Plan]
	update *querycache.Mutation[planUpdate, models.Plan]
	remove *querycache.Mutation[int64, int64]
}

func NewPlans(cache *querycache.Cache, client PlanClient) *Plans {
	invalidates := []string{resources.PlansTable}
	return &Plans{
		cache:  cache,
		client: client,
		create: querycache.NewMutation(querycache.MutationConfig[models.PlanInput, models.Plan]{
			Name:           "create_plan",
			Fn:             client.Create,
			Invalidates:    invalidates,
			SuccessMessage: func(models.Plan) string { return "New plan created successfully!" },
		}),
		update: querycache.NewMutation(querycache.MutationConfig[planUpdate, models.Plan]{
			Name: "update_plan",
			Fn: func(ctx context.Context, in planUpdate) (models.Plan, error) {
				return client.Update(ctx, in.id, in.input)
			},
			Invalidates:    invalidates,
			SuccessMessage: func(models.Plan) string { return "Plan updated successfully!" },
		}),
		remove: querycache.NewMutation(querycache.MutationConfig[int64, int64]{
			Name: "delete_plan",
			Fn: func(ctx context.Context, id int64) (int64, error) {
				return id, client.Delete(ctx, id)
			},
			Invalidates:    invalidates,
			SuccessMessage: func(int64) string { return "Plan deleted successfully" },
		}),
	}
}

func (p *Plans) List(ctx context.Context) ([]models.Plan, error) {
	return querycache.Fetch(ctx, p.cache, querycache.ScopeKey(resources.PlansTable, "all"), p.client.List)
}

func (p *Plans) Create(ctx context.Context, scope querycache.Scope, in models.PlanInput) (models.Plan, error) {
	if err := validation.Struct(in); err != nil {
		return models.Plan{}, err
	}
	return p.create.Mutate(ctx, scope, in)
}

func (p *Plans) Update(ctx context.Context, scope querycache.Scope, id int64, in models.PlanInput) (models.Plan, error) {
	if err := validation.Struct(in); err != nil {
		return models.Plan{}, err
	}
	return p.update.Mutate(ctx, scope, planUpdate{id: id, input: in})
}

func (p *Plans) Delete(ctx context.Context, scope querycache.Scope, id int64) error {
	_, err := p.remove.Mutate(ctx, scope, id)
	return err
}

type Contact struct {
	cache  *querycache.Cache
	client ContactClient
	update *querycache.Mutation[models.ContactPatch, models.Contact]
}

func NewContact(cache *querycache.Cache, client ContactClient) *Contact {
	return &Contact{
		cache:  cache,
		client: client,
		update: querycache.NewMutation(querycache.MutationConfig[models.ContactPatch, models.Contact]{
			Name:           "update_contact",
			Fn:             client.Update,
			Invalidates:    []string{resources.ContactTable},
			SuccessMessage: func(models.Contact) string { return "Contact successfully updated" },
		}),
	}
}

func (c *Contact) Get(ctx context.Context) (models.Contact, error) {
	return querycache.Fetch(ctx, c.cache, querycache.DetailKey(resources.ContactTable, models.ContactID), c.client.Get)
}

func (c *Contact) Update(ctx context.Context, scope querycache.Scope, patch models.ContactPatch) (models.Contact, error) {
	if err := validation.Struct(patch); err != nil {
		return models.Contact{}, err
	}
	return c.update.Mutate(ctx, scope, patch)
}
