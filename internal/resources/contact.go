package resources

import (
	"context"
	"log/slog"

	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/store"
)

// Contact manages the single contact row. Every call targets
// models.ContactID.
type Contact struct {
	base
	tables store.Tables
}

func NewContact(tables store.Tables, logger *slog.Logger) *Contact {
	return &Contact{base: newBase(logger), tables: tables}
}

func (c *Contact) Get(ctx context.Context) (models.Contact, error) {
	raw, _, err := c.tables.Select(ctx, ContactTable, store.Query{
		Where: []store.Condition{store.Eq("id", models.ContactID)},
	})
	if err != nil {
		return models.Contact{}, c.fail(ctx, "Contact could not be loaded", err)
	}
	contact, err := store.DecodeOne[models.Contact](raw)
	if err != nil {
		return models.Contact{}, c.fail(ctx, "Contact could not be loaded", err)
	}
	return contact, nil
}

// Update applies a partial patch; fields left nil keep their value.
func (c *Contact) Update(ctx context.Context, patch models.ContactPatch) (models.Contact, error) {
	if patch.Empty() {
		return c.Get(ctx)
	}
	raw, err := c.tables.Update(ctx, ContactTable, patch, store.Eq("id", models.ContactID))
	if err != nil {
		return models.Contact{}, c.fail(ctx, "Contact could not be updated", err)
	}
	contact, err := store.DecodeOne[models.Contact](raw)
	if err != nil {
		return models.Contact{}, c.fail(ctx, "Contact could not be updated", err)
	}
	return contact, nil
}
