package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/client"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
	"github.com/Hedi-Slm/epic-events/internal/store/storetest"
)

var _ client.Repository = (*storetest.Clients)(nil)

func strPtr(s string) *string { return &s }

type fixture struct {
	mem     *storetest.Store
	svc     *client.Service
	salesA  policy.Actor
	salesB  policy.Actor
	support policy.Actor
	manager policy.Actor
	now     time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mem := storetest.New()
	f := &fixture{
		mem:     mem,
		svc:     client.NewService(mem, mem.Clients()),
		salesA:  policy.ActorOf(ptr(mem.AddUser("Anna", "anna@epic.io", models.RoleSales))),
		salesB:  policy.ActorOf(ptr(mem.AddUser("Bruno", "bruno@epic.io", models.RoleSales))),
		support: policy.ActorOf(ptr(mem.AddUser("Sam", "sam@epic.io", models.RoleSupport))),
		manager: policy.ActorOf(ptr(mem.AddUser("Mia", "mia@epic.io", models.RoleManagement))),
		now:     time.Date(2024, 3, 10, 15, 4, 0, 0, time.UTC),
	}
	f.svc.Now = func() time.Time { return f.now }
	return f
}

func ptr(u models.User) *models.User { return &u }

func (f *fixture) createClient(t *testing.T) *models.Client {
	t.Helper()
	c, err := f.svc.Create(context.Background(), f.salesA, client.CreateClientRequest{
		FullName:    "Kevin Casey",
		Email:       "kevin@startup.io",
		Phone:       "+678 123 456 78",
		CompanyName: "Cool Startup LLC",
	})
	require.NoError(t, err)
	return c
}

func TestCreateStampsOwnerAndDates(t *testing.T) {
	f := setup(t)
	c := f.createClient(t)

	assert.NotZero(t, c.ID)
	assert.Equal(t, f.salesA.ID, c.CommercialID)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), c.DateCreated)
	assert.Equal(t, c.DateCreated, c.LastContact)
}

func TestCreateRequiresSalesRole(t *testing.T) {
	f := setup(t)
	for _, actor := range []policy.Actor{f.support, f.manager} {
		_, err := f.svc.Create(context.Background(), actor, client.CreateClientRequest{FullName: "X", Email: "x@y.io"})
		assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	}
	assert.Equal(t, 4, f.mem.Writes, "only the seeded accounts were written")
}

func TestCreateValidatesFields(t *testing.T) {
	f := setup(t)
	tests := []struct {
		name  string
		req   client.CreateClientRequest
		field string
	}{
		{"missing name", client.CreateClientRequest{Email: "a@b.io"}, "full_name"},
		{"missing email", client.CreateClientRequest{FullName: "A"}, "email"},
		{"no domain dot", client.CreateClientRequest{FullName: "A", Email: "a@b"}, "email"},
		{"no at sign", client.CreateClientRequest{FullName: "A", Email: "a.b.io"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.salesA, tt.req)
			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUpdateOwnership(t *testing.T) {
	f := setup(t)
	c := f.createClient(t)

	_, err := f.svc.Update(context.Background(), f.salesB, c.ID, client.UpdateClientRequest{Phone: strPtr("000")})
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)
	stored, err := f.mem.Clients().FindByID(nil, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "+678 123 456 78", stored.Phone)

	_, err = f.svc.Update(context.Background(), f.support, c.ID, client.UpdateClientRequest{Phone: strPtr("000")})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	updated, err := f.svc.Update(context.Background(), f.manager, c.ID, client.UpdateClientRequest{Phone: strPtr("000")})
	require.NoError(t, err)
	assert.Equal(t, "000", updated.Phone)
	assert.Equal(t, f.salesA.ID, updated.CommercialID)
}

func TestUpdateAppliesOnlyGivenFieldsAndRefreshesLastContact(t *testing.T) {
	f := setup(t)
	c := f.createClient(t)
	f.now = f.now.AddDate(0, 0, 5)

	updated, err := f.svc.Update(context.Background(), f.salesA, c.ID, client.UpdateClientRequest{
		CompanyName: strPtr("  Big Corp  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Big Corp", updated.CompanyName)
	assert.Equal(t, "Kevin Casey", updated.FullName)
	assert.Equal(t, "kevin@startup.io", updated.Email)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), updated.LastContact)
	assert.Equal(t, c.DateCreated, updated.DateCreated)
}

func TestUpdateWithSameValuesWritesNothing(t *testing.T) {
	f := setup(t)
	c := f.createClient(t)
	writes := f.mem.Writes

	_, err := f.svc.Update(context.Background(), f.salesA, c.ID, client.UpdateClientRequest{
		FullName: strPtr(c.FullName),
		Email:    strPtr(c.Email),
	})
	require.NoError(t, err)
	assert.Equal(t, writes, f.mem.Writes)
}

func TestUpdateUnknownClient(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Update(context.Background(), f.manager, 999, client.UpdateClientRequest{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListScopedForSales(t *testing.T) {
	f := setup(t)
	f.createClient(t)
	_, err := f.svc.Create(context.Background(), f.salesB, client.CreateClientRequest{FullName: "Other", Email: "o@corp.io"})
	require.NoError(t, err)

	own, err := f.svc.List(context.Background(), f.salesA)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Kevin Casey", own[0].FullName)
	require.NotNil(t, own[0].Commercial)
	assert.Equal(t, "Anna", own[0].Commercial.Name)

	for _, actor := range []policy.Actor{f.support, f.manager} {
		all, err := f.svc.List(context.Background(), actor)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	}
}

func TestGetHidesOtherSalesClients(t *testing.T) {
	f := setup(t)
	c := f.createClient(t)

	_, err := f.svc.Get(context.Background(), f.salesB, c.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	got, err := f.svc.Get(context.Background(), f.support, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}
