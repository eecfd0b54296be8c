package directory

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "maskchain/pkg/domain-errors"
	"maskchain/pkg/platform/sentinel"
)

func newTestService() *Service {
	return NewService(NewInMemoryOrganizationStore(), NewInMemoryUserStore(), slog.Default())
}

func TestKeyPrefixIsPureFunctionOfRole(t *testing.T) {
	cases := map[Role]string{
		RoleRegulator: "Mi",
		RoleDemand:    "Ho",
		RoleSupply:    "Co",
		RoleFinance:   "Ba",
		RoleOther:     "Mi",
	}
	for role, prefix := range cases {
		assert.Equal(t, prefix, role.KeyPrefix(), "role %s", role)
		// Same input, same output, no state involved.
		assert.Equal(t, prefix, role.KeyPrefix(), "role %s repeated", role)
	}
}

func TestCreateOrganizationDerivesKey(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	hospital, err := svc.CreateOrganization(ctx, "City Hospital", "DEMAND")
	require.NoError(t, err)
	assert.Equal(t, "Ho1", hospital.LedgerKey)

	producer, err := svc.CreateOrganization(ctx, "MaskCo", "SUPPLY")
	require.NoError(t, err)
	assert.Equal(t, "Co2", producer.LedgerKey)

	found, err := svc.ResolveByLedgerKey(ctx, "Co2")
	require.NoError(t, err)
	assert.Equal(t, producer.ID, found.ID)
}

func TestCreateOrganizationValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateOrganization(ctx, "  ", "DEMAND")
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))

	_, err = svc.CreateOrganization(ctx, "X", "BANKISH")
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))
}

func TestLedgerKeyIsImmutable(t *testing.T) {
	store := NewInMemoryOrganizationStore()
	ctx := context.Background()

	org := &Organization{Name: "X", Role: RoleSupply}
	require.NoError(t, store.Create(ctx, org))
	require.NoError(t, store.AssignLedgerKey(ctx, org.ID, "Co1"))

	err := store.AssignLedgerKey(ctx, org.ID, "Co999")
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)

	found, err := store.FindByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Co1", found.LedgerKey)
}

func TestRequireRole(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	bank, err := svc.CreateOrganization(ctx, "Bank", "FINANCE")
	require.NoError(t, err)

	found, err := svc.RequireRole(ctx, bank.ID, RoleFinance)
	require.NoError(t, err)
	assert.Equal(t, bank.ID, found.ID)

	_, err = svc.RequireRole(ctx, bank.ID, RoleSupply)
	assert.True(t, dErrors.Is(err, dErrors.CodeWrongRole))

	_, err = svc.RequireRole(ctx, 999, RoleSupply)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestUsers(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	org, err := svc.CreateOrganization(ctx, "Ministry", "REGULATOR")
	require.NoError(t, err)

	user, err := svc.CreateUser(ctx, "alice", org.ID)
	require.NoError(t, err)
	assert.NotZero(t, user.Key)

	_, err = svc.CreateUser(ctx, "bob", 999)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
