package contract_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/contract"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
	"github.com/Hedi-Slm/epic-events/internal/store/storetest"
)

var _ contract.Repository = (*storetest.Contracts)(nil)

type fixture struct {
	mem     *storetest.Store
	svc     *contract.Service
	salesA  policy.Actor
	salesB  policy.Actor
	support policy.Actor
	manager policy.Actor
	client  models.Client
}

func actor(u models.User) policy.Actor { return policy.ActorOf(&u) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func boolPtr(b bool) *bool { return &b }

func setup(t *testing.T) *fixture {
	t.Helper()
	mem := storetest.New()
	f := &fixture{
		mem:     mem,
		svc:     contract.NewService(mem, mem.Contracts(), mem.Clients(), mem.Users()),
		salesA:  actor(mem.AddUser("Anna", "anna@epic.io", models.RoleSales)),
		salesB:  actor(mem.AddUser("Bruno", "bruno@epic.io", models.RoleSales)),
		support: actor(mem.AddUser("Sam", "sam@epic.io", models.RoleSupport)),
		manager: actor(mem.AddUser("Mia", "mia@epic.io", models.RoleManagement)),
	}
	f.svc.Now = func() time.Time { return time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC) }
	f.client = models.Client{FullName: "Kevin Casey", Email: "kevin@startup.io", CommercialID: f.salesA.ID}
	require.NoError(t, mem.Clients().Save(nil, &f.client))
	return f
}

func (f *fixture) create(t *testing.T, req contract.CreateContractRequest) *models.Contract {
	t.Helper()
	if req.ClientID == 0 {
		req.ClientID = f.client.ID
	}
	if req.CommercialID == 0 {
		req.CommercialID = f.salesA.ID
	}
	c, err := f.svc.Create(context.Background(), f.manager, req)
	require.NoError(t, err)
	return c
}

func TestCreateDefaultsAmountDueAndUnsigned(t *testing.T) {
	f := setup(t)
	c := f.create(t, contract.CreateContractRequest{TotalAmount: dec("10000")})

	assert.True(t, c.AmountDue.Equal(dec("10000")))
	assert.False(t, c.IsSigned)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), c.DateCreated)
	require.NotNil(t, c.Client)
	assert.Equal(t, "Kevin Casey", c.Client.FullName)
}

func TestCreateWithOptionalFieldsStillInsertsDefaults(t *testing.T) {
	f := setup(t)
	c := f.create(t, contract.CreateContractRequest{
		TotalAmount: dec("5000"),
		AmountDue:   decPtr("1500.50"),
		IsSigned:    boolPtr(true),
	})
	assert.True(t, c.AmountDue.Equal(dec("1500.50")))
	assert.True(t, c.IsSigned)
	// one insert, one follow-up update
	assert.Equal(t, 4+1+2, f.mem.Writes)
}

func TestCreateOnlyByManagement(t *testing.T) {
	f := setup(t)
	for _, a := range []policy.Actor{f.salesA, f.support} {
		_, err := f.svc.Create(context.Background(), a, contract.CreateContractRequest{
			ClientID: f.client.ID, CommercialID: f.salesA.ID, TotalAmount: dec("1"),
		})
		assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	}
}

func TestCreateRejectsBadReferences(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), f.manager, contract.CreateContractRequest{
		ClientID: 999, CommercialID: f.salesA.ID, TotalAmount: dec("1"),
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Create(context.Background(), f.manager, contract.CreateContractRequest{
		ClientID: f.client.ID, CommercialID: f.support.ID, TotalAmount: dec("1"),
	})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "commercial_id", verr.Field)
}

func TestCreateValidatesAmounts(t *testing.T) {
	f := setup(t)
	tests := []struct {
		name  string
		req   contract.CreateContractRequest
		field string
	}{
		{"negative total", contract.CreateContractRequest{TotalAmount: dec("-1")}, "total_amount"},
		{"negative due", contract.CreateContractRequest{TotalAmount: dec("10"), AmountDue: decPtr("-1")}, "amount_due"},
		{"due above total", contract.CreateContractRequest{TotalAmount: dec("10"), AmountDue: decPtr("10.01")}, "amount_due"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.ClientID = f.client.ID
			tt.req.CommercialID = f.salesA.ID
			_, err := f.svc.Create(context.Background(), f.manager, tt.req)
			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUpdateByOwnerAndManagement(t *testing.T) {
	f := setup(t)
	c := f.create(t, contract.CreateContractRequest{TotalAmount: dec("10000")})

	_, err := f.svc.Update(context.Background(), f.salesB, c.ID, contract.UpdateContractRequest{IsSigned: boolPtr(true)})
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, err = f.svc.Update(context.Background(), f.support, c.ID, contract.UpdateContractRequest{IsSigned: boolPtr(true)})
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)

	updated, err := f.svc.Update(context.Background(), f.salesA, c.ID, contract.UpdateContractRequest{AmountDue: decPtr("2500")})
	require.NoError(t, err)
	assert.True(t, updated.AmountDue.Equal(dec("2500")))
	assert.True(t, updated.TotalAmount.Equal(dec("10000")))

	updated, err = f.svc.Update(context.Background(), f.manager, c.ID, contract.UpdateContractRequest{IsSigned: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsSigned)
}

func TestReassignOnlyByManagement(t *testing.T) {
	f := setup(t)
	c := f.create(t, contract.CreateContractRequest{TotalAmount: dec("100")})
	to := f.salesB.ID

	_, err := f.svc.Update(context.Background(), f.salesA, c.ID, contract.UpdateContractRequest{CommercialID: &to})
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)

	support := f.support.ID
	_, err = f.svc.Update(context.Background(), f.manager, c.ID, contract.UpdateContractRequest{CommercialID: &support})
	require.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := f.svc.Update(context.Background(), f.manager, c.ID, contract.UpdateContractRequest{CommercialID: &to})
	require.NoError(t, err)
	assert.Equal(t, to, updated.CommercialID)
}

func TestUpdateSameValuesIsNoop(t *testing.T) {
	f := setup(t)
	c := f.create(t, contract.CreateContractRequest{TotalAmount: dec("100")})
	writes := f.mem.Writes

	_, err := f.svc.Update(context.Background(), f.salesA, c.ID, contract.UpdateContractRequest{
		TotalAmount: decPtr("100.00"),
		AmountDue:   decPtr("100"),
		IsSigned:    boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, writes, f.mem.Writes)
}

func TestListStatusFiltersAndScope(t *testing.T) {
	f := setup(t)
	unsigned := f.create(t, contract.CreateContractRequest{TotalAmount: dec("100")})
	paid := f.create(t, contract.CreateContractRequest{TotalAmount: dec("100"), AmountDue: decPtr("0"), IsSigned: boolPtr(true)})
	partial := f.create(t, contract.CreateContractRequest{TotalAmount: dec("100"), AmountDue: decPtr("40"), IsSigned: boolPtr(true)})
	other := f.create(t, contract.CreateContractRequest{TotalAmount: dec("100"), CommercialID: f.salesB.ID})

	ids := func(list []models.Contract) []uint {
		var out []uint
		for _, c := range list {
			out = append(out, c.ID)
		}
		return out
	}
	tests := []struct {
		status models.ContractStatus
		want   []uint
	}{
		{models.ContractsAll, []uint{unsigned.ID, paid.ID, partial.ID, other.ID}},
		{models.ContractsUnsigned, []uint{unsigned.ID, other.ID}},
		{models.ContractsSigned, []uint{paid.ID, partial.ID}},
		{models.ContractsUnpaid, []uint{unsigned.ID, partial.ID, other.ID}},
		{models.ContractsPaid, []uint{paid.ID}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			list, err := f.svc.List(context.Background(), f.manager, models.ContractFilter{Status: tt.status})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(list))
		})
	}

	// sales scope wins over an explicit filter for another owner
	b := f.salesB.ID
	list, err := f.svc.List(context.Background(), f.salesA, models.ContractFilter{CommercialID: &b})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.svc.List(context.Background(), f.salesA, models.ContractFilter{})
	require.NoError(t, err)
	assert.Equal(t, []uint{unsigned.ID, paid.ID, partial.ID}, ids(list))
}

func TestSignedListsOwnSignedContracts(t *testing.T) {
	f := setup(t)
	f.create(t, contract.CreateContractRequest{TotalAmount: dec("100")})
	signed := f.create(t, contract.CreateContractRequest{TotalAmount: dec("100"), IsSigned: boolPtr(true)})
	f.create(t, contract.CreateContractRequest{TotalAmount: dec("100"), IsSigned: boolPtr(true), CommercialID: f.salesB.ID})

	list, err := f.svc.Signed(context.Background(), f.salesA)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, signed.ID, list[0].ID)

	_, err = f.svc.Signed(context.Background(), f.manager)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}
