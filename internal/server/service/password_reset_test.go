package service_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service/mocks"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

var issuedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type resetFixture struct {
	svc    *service.PasswordResetService
	store  *memStore
	mailer *memMailer
	clock  *fakeClock
	user   models.User
}

// newResetFixture - сервис поверх хранилища в памяти, код всегда 482913.
func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()

	user := models.User{ID: uuid.New(), Name: "A", Email: "a@b.com", PasswordHash: "old", Role: models.RoleUser}
	store := newMemStore(user)
	mailer := newMemMailer()
	clock := &fakeClock{now: issuedAt}

	svc := service.NewPasswordResetService(store, store, mailer, nil, nil, testConfig()).
		WithClock(clock.Now).
		WithCodeGenerator(func() (string, error) { return "482913", nil })

	return &resetFixture{svc: svc, store: store, mailer: mailer, clock: clock, user: user}
}

// request -> verify -> reset -> повторный verify тем же кодом
func TestPasswordReset_FullScenario(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(ctx, "a@b.com"))
	require.Equal(t, "482913", f.mailer.last("a@b.com"))

	pr, ok := f.store.pending(f.user.ID)
	require.True(t, ok)
	require.Equal(t, issuedAt.Add(600*time.Second), pr.ExpiresAt)
	// код в хранилище не лежит в открытом виде
	require.NotEqual(t, []byte("482913"), pr.CodeHash)

	f.clock.Set(issuedAt.Add(599 * time.Second))
	require.NoError(t, f.svc.VerifyOTP(ctx, "a@b.com", "482913"))

	// verify ничего не меняет
	_, ok = f.store.pending(f.user.ID)
	require.True(t, ok)

	require.NoError(t, f.svc.ResetPassword(ctx, "a@b.com", "482913", "longenough1"))

	u, err := f.store.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	matched, err := crypto.VerifyPassword("longenough1", u.PasswordHash)
	require.NoError(t, err)
	require.True(t, matched)

	err = f.svc.VerifyOTP(ctx, "a@b.com", "482913")
	require.ErrorIs(t, err, serr.ErrNoPendingRequest)
	require.Equal(t, "No OTP request found", err.Error())

	err = f.svc.ResetPassword(ctx, "a@b.com", "482913", "anotherpass1")
	require.ErrorIs(t, err, serr.ErrNoPendingRequest)
}

// ровно в момент истечения код ещё принимается, через секунду уже нет
func TestPasswordReset_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(ctx, "a@b.com"))

	f.clock.Set(issuedAt.Add(600 * time.Second))
	require.NoError(t, f.svc.VerifyOTP(ctx, "a@b.com", "482913"))

	f.clock.Set(issuedAt.Add(601 * time.Second))
	err := f.svc.VerifyOTP(ctx, "a@b.com", "482913")
	require.ErrorIs(t, err, serr.ErrOTPExpired)
	require.Equal(t, "OTP has expired", err.Error())

	err = f.svc.ResetPassword(ctx, "a@b.com", "482913", "longenough1")
	require.ErrorIs(t, err, serr.ErrOTPExpired)

	// пароль не поменялся, запрос остался
	u, _ := f.store.GetByEmail(ctx, "a@b.com")
	require.Equal(t, "old", u.PasswordHash)
	_, ok := f.store.pending(f.user.ID)
	require.True(t, ok)
}

// истёкший код проверяется раньше совпадения
func TestPasswordReset_ExpiredBeatsMismatch(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(ctx, "a@b.com"))
	f.clock.Set(issuedAt.Add(time.Hour))

	require.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@b.com", "000000"), serr.ErrOTPExpired)
}

func TestPasswordReset_Mismatch(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(ctx, "a@b.com"))

	err := f.svc.VerifyOTP(ctx, "a@b.com", "482914")
	require.ErrorIs(t, err, serr.ErrOTPMismatch)
	require.Equal(t, "Invalid OTP", err.Error())

	err = f.svc.ResetPassword(ctx, "a@b.com", "482914", "longenough1")
	require.ErrorIs(t, err, serr.ErrOTPMismatch)
}

// новый запрос заменяет старый код
func TestPasswordReset_ReissueReplacesCode(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(ctx, "a@b.com"))

	f.svc.WithCodeGenerator(func() (string, error) { return "111222", nil })
	require.NoError(t, f.svc.RequestReset(ctx, "a@b.com"))

	require.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@b.com", "482913"), serr.ErrOTPMismatch)
	require.NoError(t, f.svc.VerifyOTP(ctx, "a@b.com", "111222"))
}

func TestPasswordReset_NoPendingRequest(t *testing.T) {
	f := newResetFixture(t)

	err := f.svc.VerifyOTP(context.Background(), "a@b.com", "482913")
	require.ErrorIs(t, err, serr.ErrNoPendingRequest)
}

func TestPasswordReset_UnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	for _, err := range []error{
		f.svc.RequestReset(ctx, "nobody@b.com"),
		f.svc.VerifyOTP(ctx, "nobody@b.com", "482913"),
		f.svc.ResetPassword(ctx, "nobody@b.com", "482913", "longenough1"),
	} {
		require.ErrorIs(t, err, serr.ErrNotFound)
		require.Equal(t, "User not found", err.Error())
	}
}

func TestPasswordReset_Validation(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	err := f.svc.RequestReset(ctx, "  ")
	require.ErrorIs(t, err, serr.ErrInvalidInput)
	require.Equal(t, "Email is required", err.Error())

	err = f.svc.VerifyOTP(ctx, "a@b.com", "")
	require.ErrorIs(t, err, serr.ErrInvalidInput)
	require.Equal(t, "Email and OTP are required", err.Error())

	err = f.svc.ResetPassword(ctx, "a@b.com", "482913", "")
	require.ErrorIs(t, err, serr.ErrInvalidInput)
	require.Equal(t, "All fields are required", err.Error())
}

// короткий пароль отклоняется до похода в хранилище
func TestPasswordReset_ShortPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)
	resets := mocks.NewMockPasswordResetsRepo(ctrl)
	mailer := mocks.NewMockMailer(ctrl)

	svc := service.NewPasswordResetService(users, resets, mailer, nil, nil, testConfig())

	for _, pwd := range []string{"a", "1234567", "пароль7"} {
		err := svc.ResetPassword(context.Background(), "a@b.com", "482913", pwd)
		require.ErrorIs(t, err, serr.ErrInvalidInput)
		require.Equal(t, "Password must be at least 8 characters", err.Error())
	}
}

// письмо не ушло - ошибка транспорта, но код остаётся рабочим
func TestPasswordReset_TransportFailureKeepsCode(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)
	f.mailer.fail = true

	err := f.svc.RequestReset(ctx, "a@b.com")
	require.ErrorIs(t, err, serr.ErrTransport)
	require.Equal(t, "Failed to send OTP email", err.Error())
	// причина от SMTP сохраняется для лога
	require.ErrorIs(t, err, errSMTPAuth)
	require.Equal(t, errSMTPAuth, serr.Cause(err))

	require.NoError(t, f.svc.VerifyOTP(ctx, "a@b.com", "482913"))
}

// письмо не ушло - отметка троттлинга снимается, повтор сразу разрешён
func TestPasswordReset_TransportFailureReleasesThrottle(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)
	resets := mocks.NewMockPasswordResetsRepo(ctrl)
	mailer := mocks.NewMockMailer(ctrl)
	throttle := mocks.NewMockThrottle(ctrl)

	svc := service.NewPasswordResetService(users, resets, mailer, throttle, nil, testConfig()).
		WithClock(func() time.Time { return issuedAt }).
		WithCodeGenerator(func() (string, error) { return "482913", nil })

	id := uuid.New()
	gomock.InOrder(
		throttle.EXPECT().Allow(ctx, "a@b.com", time.Minute).Return(true, nil),
		users.EXPECT().GetByEmail(ctx, "a@b.com").Return(models.User{ID: id, Email: "a@b.com"}, nil),
		resets.EXPECT().Upsert(ctx, id, crypto.HashOTP("482913"), issuedAt.Add(service.OTPTTL)).Return(nil),
		mailer.EXPECT().SendOTP(ctx, "a@b.com", "482913", service.OTPTTL).Return(errSMTPAuth),
		throttle.EXPECT().Release(ctx, "a@b.com").Return(nil),
	)

	err := svc.RequestReset(ctx, "a@b.com")
	require.ErrorIs(t, err, serr.ErrTransport)
}

// ошибка генератора кода не теряется
func TestPasswordReset_CodeGeneratorError(t *testing.T) {
	f := newResetFixture(t)
	genErr := errors.New("entropy source unavailable")
	f.svc.WithCodeGenerator(func() (string, error) { return "", genErr })

	err := f.svc.RequestReset(context.Background(), "a@b.com")
	require.ErrorIs(t, err, serr.ErrInternal)
	require.ErrorIs(t, err, genErr)
}

// bcrypt не принимает больше 72 байт - это ошибка ввода, а не 500
func TestPasswordReset_PasswordTooLongForBcrypt(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(ctx, "a@b.com"))

	err := f.svc.ResetPassword(ctx, "a@b.com", "482913", strings.Repeat("p", 73))
	require.ErrorIs(t, err, serr.ErrInvalidInput)
	require.Equal(t, "Password must be at most 72 bytes", err.Error())

	// код не погашен
	_, ok := f.store.pending(f.user.ID)
	require.True(t, ok)
}

func TestPasswordReset_RealCodesInRange(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: uuid.New(), Email: "a@b.com"}
	store := newMemStore(user)
	mailer := newMemMailer()

	svc := service.NewPasswordResetService(store, store, mailer, nil, nil, testConfig())

	for i := 0; i < 50; i++ {
		require.NoError(t, svc.RequestReset(ctx, "a@b.com"))
		code := mailer.last("a@b.com")
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, crypto.OTPMin)
		require.LessOrEqual(t, n, crypto.OTPMax)
	}
}

func TestPasswordReset_Throttled(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)
	resets := mocks.NewMockPasswordResetsRepo(ctrl)
	mailer := mocks.NewMockMailer(ctrl)
	throttle := mocks.NewMockThrottle(ctrl)

	svc := service.NewPasswordResetService(users, resets, mailer, throttle, nil, testConfig())

	throttle.EXPECT().
		Allow(gomock.Any(), "a@b.com", time.Minute).
		Return(false, nil)

	err := svc.RequestReset(context.Background(), "A@b.com")
	require.ErrorIs(t, err, serr.ErrTooManyRequests)
}

// redis недоступен - код всё равно выдаём
func TestPasswordReset_ThrottleErrorFailsOpen(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)
	resets := mocks.NewMockPasswordResetsRepo(ctrl)
	mailer := mocks.NewMockMailer(ctrl)
	throttle := mocks.NewMockThrottle(ctrl)
	events := mocks.NewMockOTPEvents(ctrl)

	svc := service.NewPasswordResetService(users, resets, mailer, throttle, events, testConfig()).
		WithClock(func() time.Time { return issuedAt }).
		WithCodeGenerator(func() (string, error) { return "482913", nil })

	id := uuid.New()
	gomock.InOrder(
		throttle.EXPECT().Allow(gomock.Any(), "a@b.com", time.Minute).Return(false, errors.New("dial tcp: refused")),
		users.EXPECT().GetByEmail(ctx, "a@b.com").Return(models.User{ID: id, Email: "a@b.com"}, nil),
		resets.EXPECT().Upsert(ctx, id, crypto.HashOTP("482913"), issuedAt.Add(600*time.Second)).Return(nil),
		events.EXPECT().OTPEvent(service.OTPIssued),
		mailer.EXPECT().SendOTP(ctx, "a@b.com", "482913", 600*time.Second).Return(nil),
	)

	require.NoError(t, svc.RequestReset(ctx, "a@b.com"))
}

// параллельный сброс уже погасил код между проверкой и записью
func TestPasswordReset_ConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)
	resets := mocks.NewMockPasswordResetsRepo(ctrl)
	mailer := mocks.NewMockMailer(ctrl)

	svc := service.NewPasswordResetService(users, resets, mailer, nil, nil, testConfig()).
		WithClock(func() time.Time { return issuedAt })

	id := uuid.New()
	hash := crypto.HashOTP("482913")

	users.EXPECT().GetByEmail(ctx, "a@b.com").Return(models.User{ID: id, Email: "a@b.com"}, nil)
	resets.EXPECT().GetByUserID(ctx, id).Return(models.PasswordReset{
		UserID: id, CodeHash: hash, ExpiresAt: issuedAt.Add(time.Minute),
	}, nil)
	resets.EXPECT().ConsumeAndSetPassword(ctx, id, hash, gomock.Any()).Return(serr.ErrNoPendingRequest)

	err := svc.ResetPassword(ctx, "a@b.com", "482913", "longenough1")
	require.ErrorIs(t, err, serr.ErrNoPendingRequest)
	require.Equal(t, "No OTP request found", err.Error())
}

// после чистки просроченный код считается отсутствующим
func TestPasswordReset_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(ctx, "a@b.com"))

	n, err := f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	f.clock.Set(issuedAt.Add(601 * time.Second))
	n, err = f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.ErrorIs(t, f.svc.VerifyOTP(ctx, "a@b.com", "482913"), serr.ErrNoPendingRequest)
}
