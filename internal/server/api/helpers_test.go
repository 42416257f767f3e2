package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/api"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/config"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service/mocks"
	"github.com/IvanChernomyrdin/go-carrental/internal/shared/logger"
)

const signingKey = "supersecretkeysupersecretkey123456"

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			Issuer:    "carrental",
			Audience:  "carrental-web",
			AccessTTL: time.Hour,
			JWT:       config.JWTConfig{Algorithm: "HS256", SigningKey: signingKey},
		},
		Password: config.PasswordConfig{
			Hasher:    "bcrypt",
			MinLength: 8,
			Bcrypt:    config.BcryptConfig{Cost: 4},
		},
	}
}

// fixture - настоящие сервисы поверх моков репозиториев и инфраструктуры.
type fixture struct {
	h        *api.Handler
	users    *mocks.MockUsersRepo
	resets   *mocks.MockPasswordResetsRepo
	cars     *mocks.MockCarsRepo
	bookings *mocks.MockBookingsRepo
	mailer   *mocks.MockMailer
	images   *mocks.MockImageStore
	reports  *mocks.MockReportRenderer
	logDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		users:    mocks.NewMockUsersRepo(ctrl),
		resets:   mocks.NewMockPasswordResetsRepo(ctrl),
		cars:     mocks.NewMockCarsRepo(ctrl),
		bookings: mocks.NewMockBookingsRepo(ctrl),
		mailer:   mocks.NewMockMailer(ctrl),
		images:   mocks.NewMockImageStore(ctrl),
		reports:  mocks.NewMockReportRenderer(ctrl),
		logDir:   t.TempDir(),
	}

	cfg := testConfig()
	svc := service.NewServices(
		service.Repositories{Users: f.users, PasswordResets: f.resets, Cars: f.cars, Bookings: f.bookings},
		service.Infra{Mailer: f.mailer, Images: f.images, Reports: f.reports},
		cfg,
	)
	verifier := middleware.NewJWTVerifier(cfg.Auth.JWT.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	f.h = api.NewHandler(svc, logger.New(logger.Options{Dir: f.logDir}), verifier)
	return f
}

// call выполняет хендлер; userID == uuid.Nil означает анонимный запрос.
func call(t *testing.T, h http.HandlerFunc, method, target string, body any, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func requireFailure(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.Equal(t, msg, env.Message)
}
