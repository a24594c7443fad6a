package user_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
	"github.com/Hedi-Slm/epic-events/internal/store/storetest"
	"github.com/Hedi-Slm/epic-events/internal/user"
	"github.com/Hedi-Slm/epic-events/internal/utils"
)

var _ user.Repository = (*storetest.Users)(nil)

func TestMain(m *testing.M) {
	utils.HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func strPtr(s string) *string { return &s }

func rolePtr(r models.Role) *models.Role { return &r }

type fixture struct {
	mem     *storetest.Store
	svc     *user.Service
	manager policy.Actor
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mem := storetest.New()
	m := mem.AddUser("Mia", "mia@epic.io", models.RoleManagement)
	return &fixture{
		mem:     mem,
		svc:     user.NewService(mem, mem.Users(), mem.Clients(), mem.Contracts(), mem.Events()),
		manager: policy.ActorOf(&m),
	}
}

func (f *fixture) create(t *testing.T, name, email string, role models.Role) *models.User {
	t.Helper()
	u, err := f.svc.Create(context.Background(), f.manager, user.CreateUserRequest{
		Name: name, Email: email, Password: "s3cret!", Role: role,
	})
	require.NoError(t, err)
	return u
}

func TestCreateHashesPassword(t *testing.T) {
	f := setup(t)
	u := f.create(t, "Anna", " Anna@Epic.io ", models.RoleSales)

	assert.NotZero(t, u.ID)
	assert.Equal(t, "anna@epic.io", u.Email)
	assert.NotEqual(t, "s3cret!", u.Password)
	assert.True(t, utils.CheckPassword(u.Password, "s3cret!"))
}

func TestCreateOnlyByManagement(t *testing.T) {
	f := setup(t)
	sales := f.create(t, "Anna", "anna@epic.io", models.RoleSales)

	_, err := f.svc.Create(context.Background(), policy.ActorOf(sales), user.CreateUserRequest{
		Name: "X", Email: "x@epic.io", Password: "p", Role: models.RoleSales,
	})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	tests := []struct {
		name  string
		req   user.CreateUserRequest
		field string
	}{
		{"missing name", user.CreateUserRequest{Email: "a@b.io", Password: "p", Role: models.RoleSales}, "name"},
		{"bad email", user.CreateUserRequest{Name: "A", Email: "nope", Password: "p", Role: models.RoleSales}, "email"},
		{"unknown role", user.CreateUserRequest{Name: "A", Email: "a@b.io", Password: "p", Role: "admin"}, "role"},
		{"empty password", user.CreateUserRequest{Name: "A", Email: "a@b.io", Role: models.RoleSupport}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.manager, tt.req)
			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestEmailIsUnique(t *testing.T) {
	f := setup(t)
	anna := f.create(t, "Anna", "anna@epic.io", models.RoleSales)
	bruno := f.create(t, "Bruno", "bruno@epic.io", models.RoleSales)

	_, err := f.svc.Create(context.Background(), f.manager, user.CreateUserRequest{
		Name: "Other", Email: "ANNA@epic.io", Password: "p", Role: models.RoleSupport,
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.svc.Update(context.Background(), f.manager, bruno.ID, user.UpdateUserRequest{Email: strPtr("anna@epic.io")})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// keeping one's own address is not a conflict
	_, err = f.svc.Update(context.Background(), f.manager, anna.ID, user.UpdateUserRequest{Email: strPtr("anna@epic.io")})
	assert.NoError(t, err)
}

func TestUpdatePartialFields(t *testing.T) {
	f := setup(t)
	u := f.create(t, "Anna", "anna@epic.io", models.RoleSales)

	updated, err := f.svc.Update(context.Background(), f.manager, u.ID, user.UpdateUserRequest{
		Role:     rolePtr(models.RoleSupport),
		Password: strPtr("n3w"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupport, updated.Role)
	assert.Equal(t, "Anna", updated.Name)
	assert.True(t, utils.CheckPassword(updated.Password, "n3w"))

	_, err = f.svc.Update(context.Background(), f.manager, u.ID, user.UpdateUserRequest{Role: rolePtr("boss")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Update(context.Background(), policy.ActorOf(updated), u.ID, user.UpdateUserRequest{Name: strPtr("Me")})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}

func TestUpdateSameValuesIsNoop(t *testing.T) {
	f := setup(t)
	u := f.create(t, "Anna", "anna@epic.io", models.RoleSales)
	writes := f.mem.Writes

	_, err := f.svc.Update(context.Background(), f.manager, u.ID, user.UpdateUserRequest{
		Name: strPtr("Anna"), Email: strPtr("anna@epic.io"), Role: rolePtr(models.RoleSales),
	})
	require.NoError(t, err)
	assert.Equal(t, writes, f.mem.Writes)
}

func TestDeleteGuards(t *testing.T) {
	f := setup(t)
	owner := f.create(t, "Anna", "anna@epic.io", models.RoleSales)
	free := f.create(t, "Bruno", "bruno@epic.io", models.RoleSupport)
	for _, name := range []string{"C1", "C2"} {
		c := models.Client{FullName: name, Email: name + "@corp.io", CommercialID: owner.ID}
		require.NoError(t, f.mem.Clients().Save(nil, &c))
	}

	_, err := f.svc.Delete(context.Background(), f.manager, f.manager.ID)
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, err = f.svc.Delete(context.Background(), f.manager, owner.ID)
	var assoc *apperr.AssociationError
	require.True(t, errors.As(err, &assoc), "got %v", err)
	assert.Equal(t, int64(2), assoc.ClientsCount)
	assert.Zero(t, assoc.ContractsCount)
	assert.Zero(t, assoc.EventsCount)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = f.mem.Users().FindByID(nil, owner.ID)
	require.NoError(t, err, "account must survive a refused delete")

	deleted, err := f.svc.Delete(context.Background(), f.manager, free.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bruno", deleted.Name)
	_, err = f.mem.Users().FindByID(nil, free.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Delete(context.Background(), f.manager, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRoleChangeRefusedWhileReferenced(t *testing.T) {
	f := setup(t)
	seller := f.create(t, "Anna", "anna@epic.io", models.RoleSales)
	support := f.create(t, "Sam", "sam@epic.io", models.RoleSupport)
	c := models.Client{FullName: "C1", Email: "c1@corp.io", CommercialID: seller.ID}
	require.NoError(t, f.mem.Clients().Save(nil, &c))
	sid := support.ID
	e := models.Event{Name: "Gala", SupportID: &sid}
	require.NoError(t, f.mem.Events().Save(nil, &e))
	writes := f.mem.Writes

	_, err := f.svc.Update(context.Background(), f.manager, seller.ID, user.UpdateUserRequest{Role: rolePtr(models.RoleSupport)})
	var assoc *apperr.AssociationError
	require.True(t, errors.As(err, &assoc), "got %v", err)
	assert.Equal(t, int64(1), assoc.ClientsCount)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.svc.Update(context.Background(), f.manager, support.ID, user.UpdateUserRequest{Role: rolePtr(models.RoleManagement)})
	require.True(t, errors.As(err, &assoc), "got %v", err)
	assert.Equal(t, int64(1), assoc.EventsCount)
	assert.Equal(t, writes, f.mem.Writes)

	stored, err := f.mem.Users().FindByID(nil, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSales, stored.Role)

	renamed, err := f.svc.Update(context.Background(), f.manager, seller.ID, user.UpdateUserRequest{Name: strPtr("Anna B")})
	require.NoError(t, err)
	assert.Equal(t, "Anna B", renamed.Name)
}

func TestCheckAssociationsCountsEvents(t *testing.T) {
	f := setup(t)
	support := f.create(t, "Sam", "sam@epic.io", models.RoleSupport)
	id := support.ID
	e := models.Event{Name: "Gala", SupportID: &id}
	require.NoError(t, f.mem.Events().Save(nil, &e))

	assoc, err := f.svc.CheckAssociations(context.Background(), f.manager, support.ID)
	require.NoError(t, err)
	assert.True(t, assoc.Any())
	assert.Equal(t, int64(1), assoc.EventsCount)
}

func TestListByRole(t *testing.T) {
	f := setup(t)
	f.create(t, "Anna", "anna@epic.io", models.RoleSales)
	f.create(t, "Sam", "sam@epic.io", models.RoleSupport)
	sales := f.create(t, "Bruno", "bruno@epic.io", models.RoleSales)

	list, err := f.svc.ListByRole(context.Background(), f.manager, models.RoleSales)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	all, err := f.svc.List(context.Background(), f.manager)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = f.svc.List(context.Background(), policy.ActorOf(sales))
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}

func TestBootstrap(t *testing.T) {
	mem := storetest.New()
	svc := user.NewService(mem, mem.Users(), mem.Clients(), mem.Contracts(), mem.Events())

	u, err := svc.Bootstrap(context.Background(), user.CreateUserRequest{
		Name: "Root", Email: "root@epic.io", Password: "pw", Role: models.RoleSales,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManagement, u.Role)

	_, err = svc.Bootstrap(context.Background(), user.CreateUserRequest{Name: "Two", Email: "two@epic.io", Password: "pw"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}
