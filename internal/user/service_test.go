package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

func newTestService() Service {
	return NewService(store.NewMemoryStore(), NewRepository(), auth.NewBcryptPasswordHasher(bcrypt.MinCost), nil)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, RegisterRequest{Email: "  Ana@Example.com ", Password: "password1", Name: "Ana"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.NotEqual(t, "password1", u.PasswordHash)

	_, err = svc.Register(ctx, RegisterRequest{Email: "ana@example.com", Password: "password2", Name: "Other"})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	_, err = svc.Register(ctx, RegisterRequest{Email: "bad", Password: "short", Role: "admin"})
	var valErr *apperror.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.True(t, valErr.Has("email"))
	assert.True(t, valErr.Has("password"))
	assert.True(t, valErr.Has("name"))
	assert.True(t, valErr.Has("role"))

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	owner, err := svc.Register(ctx, RegisterRequest{Email: "owner@example.com", Password: "password1", Name: "Owner", Role: RoleOwner})
	require.NoError(t, err)

	u, err := svc.Login(ctx, "OWNER@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, u.ID)
	assert.Equal(t, RoleOwner, u.Role)
	require.NotNil(t, u.LastLoginAt)

	_, err = svc.Login(ctx, "owner@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProvision(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	req := ProvisionRequest{ID: "owner1", Email: "Owner1@Venues.example", Password: "seed-pass", Name: "Maria", Role: RoleOwner}

	u, created, err := svc.Provision(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "owner1", u.ID)
	assert.Equal(t, "owner1@venues.example", u.Email)

	logged, err := svc.Login(ctx, "owner1@venues.example", "seed-pass")
	require.NoError(t, err)
	assert.Equal(t, "owner1", logged.ID)

	// Restarts leave the existing account alone, password included.
	req.Password = "another-pass"
	again, created, err := svc.Provision(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.PasswordHash, again.PasswordHash)

	_, _, err = svc.Provision(ctx, ProvisionRequest{ID: "owner2", Email: "owner1@venues.example", Password: "seed-pass", Role: RoleOwner})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	_, _, err = svc.Provision(ctx, ProvisionRequest{Email: "x", Role: "admin"})
	var valErr *apperror.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.True(t, valErr.Has("ID"))
	assert.True(t, valErr.Has("Password"))
}
