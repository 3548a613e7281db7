package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/db/dbtest"
	"github.com/jonathan/interview-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPasswords keeps bcrypt cheap in tests.
var fastPasswords = &config.PasswordConfig{BcryptCost: 4}

func TestConvertDBUserToTypesUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		now := time.Now()
		dbUser := &db.User{
			ID:           uuid.New(),
			Name:         "John Doe",
			CompanyName:  "Acme Corp",
			Email:        "john@example.com",
			Phone:        "555-0100",
			PasswordHash: "hashed-password",
			PasswordSet:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		typesUser := convertDBUserToTypesUser(dbUser)
		require.NotNil(t, typesUser)
		assert.Equal(t, dbUser.ID, typesUser.ID)
		assert.Equal(t, dbUser.Name, typesUser.Name)
		assert.Equal(t, "Acme Corp", typesUser.CompanyName)
		assert.Equal(t, dbUser.Email, typesUser.Email)
		assert.Equal(t, dbUser.Phone, typesUser.Phone)
		assert.True(t, typesUser.PasswordSet)
		assert.Equal(t, dbUser.CreatedAt, typesUser.CreatedAt)
	})

	t.Run("nil user", func(t *testing.T) {
		assert.Nil(t, convertDBUserToTypesUser(nil))
	})
}

func registerReq() *types.CreateUserRequest {
	return &types.CreateUserRequest{
		Name:        "Grace Hopper",
		CompanyName: "Acme Corp",
		Email:       "Grace@Acme.test",
		Password:    "correct-horse",
	}
}

func TestUserService_Register(t *testing.T) {
	svc := NewUserService(dbtest.NewStore(), fastPasswords)

	user, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	assert.Equal(t, "grace@acme.test", user.Email)
	assert.Equal(t, "Acme Corp", user.CompanyName)
	assert.True(t, user.PasswordSet)

	_, err = svc.Register(context.Background(), registerReq())
	var exists *ErrEmailAlreadyExists
	assert.ErrorAs(t, err, &exists)
}

func TestUserService_Login(t *testing.T) {
	svc := NewUserService(dbtest.NewStore(), fastPasswords)
	ctx := context.Background()
	registered, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	user, err := svc.Login(ctx, &types.LoginRequest{Email: "grace@acme.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	tests := []struct {
		name string
		req  types.LoginRequest
	}{
		{name: "wrong password", req: types.LoginRequest{Email: "grace@acme.test", Password: "battery-staple"}},
		{name: "unknown email", req: types.LoginRequest{Email: "nobody@acme.test", Password: "correct-horse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &tt.req)
			var invalid *ErrInvalidCredentials
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestUserService_UpdatePassword(t *testing.T) {
	svc := NewUserService(dbtest.NewStore(), fastPasswords)
	ctx := context.Background()
	user, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, user.ID, "not-the-password", "new-password-1")
	var mismatch *ErrPasswordMismatch
	assert.ErrorAs(t, err, &mismatch)

	require.NoError(t, svc.UpdatePassword(ctx, user.ID, "correct-horse", "new-password-1"))
	_, err = svc.Login(ctx, &types.LoginRequest{Email: "grace@acme.test", Password: "new-password-1"})
	assert.NoError(t, err)

	err = svc.UpdatePassword(ctx, uuid.New(), "x", "new-password-1")
	var notFound *ErrUserNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestUserService_Me(t *testing.T) {
	svc := NewUserService(dbtest.NewStore(), fastPasswords)
	ctx := context.Background()
	user, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", me.Name)

	_, err = svc.Me(ctx, uuid.New())
	assert.Error(t, err)
}
