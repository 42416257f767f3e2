package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service/mocks"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

// создаём сервис
func newAuthService(t *testing.T) (*service.AuthService, *mocks.MockUsersRepo) {
	t.Helper()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)

	return service.NewAuthService(users, testConfig()), users
}

func subjectOf(t *testing.T, token string) string {
	t.Helper()

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testConfig().Auth.JWT.SigningKey), nil
	})
	require.NoError(t, err)
	return claims.Subject
}

func TestAuthService_Register_OK(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)
	id := uuid.New()

	users.EXPECT().
		Create(ctx, "Ann", "ann@mail.com", gomock.Any()).
		DoAndReturn(func(_ context.Context, name, email, hash string) (models.User, error) {
			// пароль хранится только в виде хэша
			ok, err := crypto.VerifyPassword("longenough1", hash)
			require.NoError(t, err)
			require.True(t, ok)
			return models.User{ID: id, Name: name, Email: email, Role: models.RoleUser}, nil
		})

	token, err := svc.Register(ctx, " Ann ", " Ann@Mail.com ", "longenough1")
	require.NoError(t, err)
	require.Equal(t, id.String(), subjectOf(t, token))
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newAuthService(t)

	cases := []struct{ name, email, password string }{
		{"", "a@b.com", "longenough1"},
		{"Ann", "", "longenough1"},
		{"Ann", "a@b.com", ""},
		{"Ann", "a@b.com", "short"},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.name, tc.email, tc.password)
		require.ErrorIs(t, err, serr.ErrInvalidInput)
		require.Equal(t, "Fill all the fields", err.Error())
	}
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), "Ann", "a@b.com", strings.Repeat("x", 80))
	require.ErrorIs(t, err, serr.ErrInvalidInput)
	require.Equal(t, "Password must be at most 72 bytes", err.Error())
}

func TestAuthService_Register_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	users.EXPECT().
		Create(ctx, "Ann", "a@b.com", gomock.Any()).
		Return(models.User{}, serr.ErrAlreadyExists)

	_, err := svc.Register(ctx, "Ann", "a@b.com", "longenough1")
	require.ErrorIs(t, err, serr.ErrAlreadyExists)
	require.Equal(t, "User already exists", err.Error())
}

// Успех
func TestAuthService_Login_OK(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	id := uuid.New()
	hash, err := crypto.HashPasswordBcrypt("longenough1", 4)
	require.NoError(t, err)

	users.EXPECT().
		GetByEmail(ctx, "a@b.com").
		Return(models.User{ID: id, Email: "a@b.com", PasswordHash: hash}, nil)

	token, err := svc.Login(ctx, "A@B.com", "longenough1")
	require.NoError(t, err)
	require.Equal(t, id.String(), subjectOf(t, token))
}

// Неверный пароль
func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	hash, err := crypto.HashPasswordBcrypt("longenough1", 4)
	require.NoError(t, err)

	users.EXPECT().
		GetByEmail(ctx, "a@b.com").
		Return(models.User{ID: uuid.New(), PasswordHash: hash}, nil)

	_, err = svc.Login(ctx, "a@b.com", "wrong-password")
	require.ErrorIs(t, err, serr.ErrInvalidCredentials)
	require.Equal(t, "Invalid Credentials", err.Error())
}

// Пользователь не найден
func TestAuthService_Login_UserNotFound(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	users.EXPECT().
		GetByEmail(ctx, "a@b.com").
		Return(models.User{}, serr.ErrNotFound)

	_, err := svc.Login(ctx, "a@b.com", "longenough1")
	require.ErrorIs(t, err, serr.ErrNotFound)
	require.Equal(t, "User not found", err.Error())
}

func TestAuthService_GetUser(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)
	id := uuid.New()

	users.EXPECT().GetByID(ctx, id).Return(models.User{ID: id, Name: "Ann"}, nil)
	u, err := svc.GetUser(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Ann", u.Name)

	// токен есть, а пользователя уже нет
	users.EXPECT().GetByID(ctx, id).Return(models.User{}, serr.ErrNotFound)
	_, err = svc.GetUser(ctx, id)
	require.ErrorIs(t, err, serr.ErrUnauthorized)
}
