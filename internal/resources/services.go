package resources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/store"
)

type Services struct {
	base
	tables  store.Tables
	objects store.Objects
	bucket  string
	// objectName builds the storage key for an uploaded icon.
	objectName func(filename string) string
}

func NewServices(tables store.Tables, objects store.Objects, bucket string, logger *slog.Logger) *Services {
	if bucket == "" {
		bucket = DefaultServiceIconsBucket
	}
	return &Services{
		base:       newBase(logger),
		tables:     tables,
		objects:    objects,
		bucket:     bucket,
		objectName: iconObjectName,
	}
}

// iconObjectName prefixes the file name with a random uuid and strips path
// separators.
func iconObjectName(filename string) string {
	return strings.ReplaceAll(uuid.NewString()+"-"+filename, "/", "")
}

type serviceFields struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	ShowHome         bool   `json:"show_home"`
}

func (s *Services) List(ctx context.Context, filter params.Filter, sortBy params.Sort) ([]models.Service, error) {
	q := store.Query{}
	if !filter.IsZero() {
		q.Where = append(q.Where, store.Eq(filter.Field, filter.Value))
	}
	if !sortBy.IsZero() {
		q.Order = append(q.Order, store.Order{Column: sortBy.Field, Ascending: sortBy.Ascending()})
	}

	raw, _, err := s.tables.Select(ctx, ServicesTable, q)
	if err != nil {
		return nil, s.fail(ctx, "Error fetching services", err)
	}
	services, err := store.DecodeAll[models.Service](raw)
	if err != nil {
		return nil, s.fail(ctx, "Error fetching services", err)
	}
	return services, nil
}

func (s *Services) Get(ctx context.Context, id int64) (models.Service, error) {
	raw, _, err := s.tables.Select(ctx, ServicesTable, store.Query{Where: []store.Condition{store.Eq("id", id)}})
	if err != nil {
		return models.Service{}, s.fail(ctx, "Service not found", err)
	}
	service, err := store.DecodeOne[models.Service](raw)
	if err != nil {
		return models.Service{}, s.fail(ctx, "Service not found", err)
	}
	return service, nil
}

// Create inserts the row, uploads the icon and stores its public URL. If
// any step after the insert fails the row is deleted so nothing persists.
func (s *Services) Create(ctx context.Context, in models.NewService) (models.Service, error) {
	var (
		created  models.Service
		object   string
		inserted *insertedRow
	)

	err := saga{
		name:   "create service",
		logger: s.logger,
		steps: []step{
			{
				name:    "insert service",
				message: "Error adding service",
				run: func(ctx context.Context) error {
					raw, err := s.tables.Insert(ctx, ServicesTable, serviceFields{
						Name:             in.Name,
						Description:      in.Description,
						ShortDescription: in.ShortDescription,
						ShowHome:         in.ShowHome,
					})
					if err != nil {
						return err
					}
					inserted = readInsertedRow(raw)
					created, err = store.DecodeOne[models.Service](raw)
					return err
				},
				applied: func() bool { return inserted != nil },
				compensate: func(ctx context.Context) error {
					if inserted.err != nil {
						return fmt.Errorf("inserted service has no readable id: %w", inserted.err)
					}
					return s.tables.Delete(ctx, ServicesTable, store.Eq("id", inserted.ID))
				},
			},
			{
				name:    "upload icon",
				message: "Service image could not be uploaded and the service was not created",
				run: func(ctx context.Context) error {
					object = s.objectName(in.Icon.Filename)
					return s.objects.Upload(ctx, s.bucket, object, in.Icon.Data, in.Icon.ContentType)
				},
				compensate: func(ctx context.Context) error {
					return s.objects.Remove(ctx, s.bucket, object)
				},
			},
			{
				name:    "store icon url",
				message: "Error updating service with image URL",
				run: func(ctx context.Context) error {
					raw, err := s.tables.Update(ctx, ServicesTable,
						map[string]any{"icon": s.objects.PublicURL(s.bucket, object)},
						store.Eq("id", inserted.ID))
					if err != nil {
						return err
					}
					created, err = store.DecodeOne[models.Service](raw)
					return err
				},
			},
		},
	}.run(ctx)
	if err != nil {
		return models.Service{}, err
	}
	return created, nil
}

// insertedRow is the id of a row the backend reported as written. err is set
// when the response did not carry one.
type insertedRow struct {
	ID  int64 `json:"id"`
	err error
}

func readInsertedRow(raw []byte) *insertedRow {
	row, err := store.DecodeOne[insertedRow](raw)
	if err != nil {
		return &insertedRow{err: err}
	}
	return &row
}

// Update replaces the editable fields. The icon is re-uploaded only when a
// new one is given; otherwise the current URL is kept.
func (s *Services) Update(ctx context.Context, id int64, in models.ServicePatch) (models.Service, error) {
	raw, _, err := s.tables.Select(ctx, ServicesTable, store.Query{
		Columns: "icon",
		Where:   []store.Condition{store.Eq("id", id)},
	})
	if err != nil {
		return models.Service{}, s.fail(ctx, "Error fetching current service data", err)
	}
	current, err := store.DecodeOne[models.Service](raw)
	if err != nil {
		return models.Service{}, s.fail(ctx, "Error fetching current service data", err)
	}

	icon := current.Icon
	if in.Icon != nil {
		object := s.objectName(in.Icon.Filename)
		if err := s.objects.Upload(ctx, s.bucket, object, in.Icon.Data, in.Icon.ContentType); err != nil {
			return models.Service{}, s.fail(ctx, "Service icon could not be uploaded", err)
		}
		icon = s.objects.PublicURL(s.bucket, object)
	}

	raw, err = s.tables.Update(ctx, ServicesTable, struct {
		serviceFields
		Icon string `json:"icon"`
	}{
		serviceFields: serviceFields{
			Name:             in.Name,
			Description:      in.Description,
			ShortDescription: in.ShortDescription,
			ShowHome:         in.ShowHome,
		},
		Icon: icon,
	}, store.Eq("id", id))
	if err != nil {
		return models.Service{}, s.fail(ctx, "Error updating service", err)
	}
	service, err := store.DecodeOne[models.Service](raw)
	if err != nil {
		return models.Service{}, s.fail(ctx, "Error updating service", err)
	}
	return service, nil
}

func (s *Services) Delete(ctx context.Context, id int64) error {
	if err := s.tables.Delete(ctx, ServicesTable, store.Eq("id", id)); err != nil {
		return s.fail(ctx, "Error deleting service", err)
	}
	return nil
}
