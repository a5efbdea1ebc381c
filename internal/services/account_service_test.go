package services

import (
	"testing"
	"time"

	"stone_sales/internal/models"
	"stone_sales/internal/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountService(t *testing.T, f *fixture) (AccountService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAccountService(f.deps, redis.NewClient(rdb), time.Hour), mr
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	accounts, _ := newAccountService(t, f)

	account, err := accounts.Register(f.ctx, RegisterRequest{
		Username: "putu",
		Password: "batu-alam-1",
		Name:     "Putu",
		Email:    "putu@example.com",
		Phone:    "081234",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, account.Role)
	require.NotNil(t, account.CustomerID)

	customer, err := f.store.Customers().GetByID(f.ctx, *account.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "081234", customer.Phone)

	result, err := accounts.Login(f.ctx, "putu", "batu-alam-1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.RoleCustomer, result.Session.Role)
	assert.True(t, fixedNow.Add(time.Hour).Equal(result.ExpiresAt))

	session, err := accounts.Authenticate(f.ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, session.AccountID)
	assert.Equal(t, *account.CustomerID, *session.CustomerID)

	require.NoError(t, accounts.Logout(f.ctx, result.Token))
	_, err = accounts.Authenticate(f.ctx, result.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	accounts, _ := newAccountService(t, f)

	_, err := accounts.Register(f.ctx, RegisterRequest{Username: "kadek", Password: "correct-horse", Name: "Kadek", Email: "kadek@example.com"})
	require.NoError(t, err)

	_, err = accounts.Login(f.ctx, "kadek", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = accounts.Login(f.ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	accounts, _ := newAccountService(t, f)

	valid := RegisterRequest{Username: "wayan", Password: "long-enough", Name: "Wayan", Email: "wayan@example.com"}
	_, err := accounts.Register(f.ctx, valid)
	require.NoError(t, err)

	duplicate := valid
	duplicate.Email = "other@example.com"
	_, err = accounts.Register(f.ctx, duplicate)
	assert.ErrorIs(t, err, ErrInvalidInput)

	short := valid
	short.Username = "nyoman"
	short.Password = "short"
	_, err = accounts.Register(f.ctx, short)
	assert.ErrorIs(t, err, ErrInvalidInput)

	customers, err := f.store.Customers().GetAll(f.ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 1, "rejected registrations must not leave customers behind")
}

func TestSessionsExpire(t *testing.T) {
	f := newFixture(t)
	accounts, mr := newAccountService(t, f)

	_, err := accounts.Register(f.ctx, RegisterRequest{Username: "ketut", Password: "long-enough", Name: "Ketut", Email: "ketut@example.com"})
	require.NoError(t, err)
	result, err := accounts.Login(f.ctx, "ketut", "long-enough")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = accounts.Authenticate(f.ctx, result.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = accounts.Authenticate(f.ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
