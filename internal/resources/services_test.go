package resources_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/resources"
	"groom-admin-backend/internal/store/storetest"
)

func icon(name string) *models.Upload {
	return &models.Upload{Filename: name, ContentType: "image/png", Data: strings.NewReader("png-bytes")}
}

func newService() models.NewService {
	return models.NewService{
		Name:             "Full grooming",
		Description:      "Bath, haircut and nail trim",
		ShortDescription: "Everything",
		ShowHome:         true,
		Icon:             icon("dogs/scissors.png"),
	}
}

func TestServices_CreateStoresIconURL(t *testing.T) {
	tables := storetest.NewTables()
	objects := storetest.NewObjects()
	client := resources.NewServices(tables, objects, "", nil)

	service, err := client.Create(context.Background(), newService())
	require.NoError(t, err)

	assert.Equal(t, "Full grooming", service.Name)
	assert.True(t, strings.HasPrefix(service.Icon, "https://storage.test/services-icons/"))
	assert.True(t, strings.HasSuffix(service.Icon, "-dogsscissors.png"), "path separators are stripped")

	keys := objects.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "https://storage.test/"+keys[0], service.Icon)
}

func TestServices_CreateUploadFailureDeletesRow(t *testing.T) {
	tables := storetest.NewTables()
	objects := storetest.NewObjects()
	objects.UploadErr = errors.New("bucket quota exceeded")
	client := resources.NewServices(tables, objects, "", nil)

	_, err := client.Create(context.Background(), newService())

	var partial *apperrors.PartialCompletionError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "Service image could not be uploaded and the service was not created", err.Error())
	assert.Equal(t, "insert service", partial.Committed)
	assert.Equal(t, "upload icon", partial.Failed)
	assert.True(t, partial.Compensated)
	assert.NoError(t, partial.CompensationErr)

	assert.Len(t, tables.CallsTo("insert", resources.ServicesTable), 1)
	assert.Len(t, tables.CallsTo("delete", resources.ServicesTable), 1)
	assert.Empty(t, tables.Rows(resources.ServicesTable))
}

func TestServices_CreateReportsFailedCompensation(t *testing.T) {
	tables := storetest.NewTables()
	tables.FailOn("delete", resources.ServicesTable, errors.New("permission denied"))
	objects := storetest.NewObjects()
	objects.UploadErr = errors.New("timeout")
	client := resources.NewServices(tables, objects, "", nil)

	_, err := client.Create(context.Background(), newService())

	var partial *apperrors.PartialCompletionError
	require.ErrorAs(t, err, &partial)
	assert.False(t, partial.Compensated)
	assert.EqualError(t, partial.CompensationErr, "permission denied")
	assert.Len(t, tables.Rows(resources.ServicesTable), 1)
}

func TestServices_CreateInsertFailure(t *testing.T) {
	tables := storetest.NewTables()
	tables.FailOn("insert", resources.ServicesTable, errors.New("duplicate key"))
	objects := storetest.NewObjects()
	client := resources.NewServices(tables, objects, "", nil)

	_, err := client.Create(context.Background(), newService())

	var remote *apperrors.RemoteOperationError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Error adding service", remote.Message)
	assert.Empty(t, objects.Keys())
}

// mangledInsert stores rows like storetest.Tables but answers inserts with a
// body the caller cannot decode.
type mangledInsert struct {
	*storetest.Tables
	body func(stored []byte) []byte
}

func (m mangledInsert) Insert(ctx context.Context, table string, row any) ([]byte, error) {
	raw, err := m.Tables.Insert(ctx, table, row)
	if err != nil {
		return nil, err
	}
	return m.body(raw), nil
}

func TestServices_CreateUndecodableInsertDeletesRow(t *testing.T) {
	tables := storetest.NewTables()
	objects := storetest.NewObjects()
	client := resources.NewServices(mangledInsert{
		Tables: tables,
		body: func(stored []byte) []byte {
			return []byte(strings.Replace(string(stored), `"show_home":true`, `"show_home":"yes"`, 1))
		},
	}, objects, "", nil)

	_, err := client.Create(context.Background(), newService())

	var partial *apperrors.PartialCompletionError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "Error adding service", err.Error())
	assert.Equal(t, "insert service", partial.Committed)
	assert.Equal(t, "insert service", partial.Failed)
	assert.True(t, partial.Compensated)

	assert.Len(t, tables.CallsTo("delete", resources.ServicesTable), 1)
	assert.Empty(t, tables.Rows(resources.ServicesTable))
	assert.Empty(t, objects.Keys())
}

func TestServices_CreateInsertWithoutIDReportsCompensation(t *testing.T) {
	tables := storetest.NewTables()
	objects := storetest.NewObjects()
	client := resources.NewServices(mangledInsert{
		Tables: tables,
		body:   func([]byte) []byte { return []byte(`<html>bad gateway</html>`) },
	}, objects, "", nil)

	_, err := client.Create(context.Background(), newService())

	var partial *apperrors.PartialCompletionError
	require.ErrorAs(t, err, &partial)
	assert.False(t, partial.Compensated)
	require.Error(t, partial.CompensationErr)
	assert.Contains(t, partial.CompensationErr.Error(), "no readable id")
	assert.Empty(t, tables.CallsTo("delete", resources.ServicesTable))
}

func TestServices_UpdatePreservesIcon(t *testing.T) {
	tables := storetest.NewTables()
	tables.Seed(resources.ServicesTable, models.Service{ID: 3, Name: "Old name", Icon: "https://cdn/old.png"})
	objects := storetest.NewObjects()
	client := resources.NewServices(tables, objects, "", nil)

	service, err := client.Update(context.Background(), 3, models.ServicePatch{
		Name:        "New name",
		Description: "A new description",
	})
	require.NoError(t, err)

	assert.Equal(t, "New name", service.Name)
	assert.Equal(t, "https://cdn/old.png", service.Icon)
	assert.Empty(t, objects.Keys())
}

func TestServices_UpdateWithNewIcon(t *testing.T) {
	tables := storetest.NewTables()
	tables.Seed(resources.ServicesTable, models.Service{ID: 3, Name: "Old name", Icon: "https://cdn/old.png"})
	objects := storetest.NewObjects()
	client := resources.NewServices(tables, objects, "", nil)

	service, err := client.Update(context.Background(), 3, models.ServicePatch{
		Name:        "Old name",
		Description: "A new description",
		Icon:        icon("new.png"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, "https://cdn/old.png", service.Icon)
	assert.True(t, strings.HasSuffix(service.Icon, "-new.png"))
}

func TestServices_UpdateUploadFailureKeepsRow(t *testing.T) {
	tables := storetest.NewTables()
	tables.Seed(resources.ServicesTable, models.Service{ID: 3, Name: "Old name", Icon: "https://cdn/old.png"})
	objects := storetest.NewObjects()
	objects.UploadErr = errors.New("timeout")
	client := resources.NewServices(tables, objects, "", nil)

	_, err := client.Update(context.Background(), 3, models.ServicePatch{Name: "Old name", Icon: icon("new.png")})

	assert.EqualError(t, err, "Service icon could not be uploaded")
	assert.Empty(t, tables.CallsTo("update", resources.ServicesTable))
}

func TestServices_ListFiltersAndSorts(t *testing.T) {
	tables := storetest.NewTables()
	tables.Seed(resources.ServicesTable,
		models.Service{ID: 1, Name: "Bath", ShowHome: true},
		models.Service{ID: 2, Name: "Nails", ShowHome: false},
		models.Service{ID: 3, Name: "Haircut", ShowHome: true},
	)
	client := resources.NewServices(tables, storetest.NewObjects(), "", nil)

	services, err := client.List(context.Background(),
		params.Filter{Field: "show_home", Value: "true"},
		params.Sort{Field: "name", Direction: params.Desc})
	require.NoError(t, err)

	require.Len(t, services, 2)
	assert.Equal(t, "Haircut", services[0].Name)
	assert.Equal(t, "Bath", services[1].Name)
}
