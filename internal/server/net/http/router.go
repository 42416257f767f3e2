// Package http реализует маршрутизацию HTTP-слоя сервера аренды машин.
//
// Пакет отвечает за:
//   - регистрацию HTTP-маршрутов и настройку роутера (chi);
//   - CORS для веб-клиента, request id, recover;
//   - логирование и метрики HTTP-запросов;
//   - проверку JWT access-токенов на закрытых маршрутах.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/api"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/metrics"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/middleware"
)

// Options - необязательные части роутера.
type Options struct {
	// AllowedOrigins - источники, с которых браузеру разрешены запросы. Пусто - CORS выключен.
	AllowedOrigins []string
	// MaxBodyBytes - лимит тела запроса; 0 - без лимита на уровне роутера.
	MaxBodyBytes int64
	// Metrics и MetricsPath включают /metrics.
	Metrics     *metrics.Metrics
	MetricsPath string
}

// NewRouter создаёт и настраивает HTTP-роутер сервера.
//
// Публичные пути: регистрация, вход, список машин и три шага сброса пароля.
// Остальное под /api требует Authorization: Bearer <token>.
func NewRouter(h *api.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	// логирование всех запросов
	r.Use(middleware.LoggerMiddleware(h.Log))
	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
	}
	r.Use(chimw.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if opts.MaxBodyBytes > 0 {
		r.Use(chimw.RequestSize(opts.MaxBodyBytes))
	}

	// добавляем swagger
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, opts.Metrics.Handler())
	}

	auth := h.Verifier.AuthMiddleware()

	r.Route("/api/user", func(r chi.Router) {
		// публичные пути
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/cars", h.Cars)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/reset-password", h.ResetPassword)

		r.With(auth).Get("/data", h.UserData)
	})

	// защищены пути
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(auth)
		r.Post("/create", h.CreateBooking)
		r.Get("/user", h.UserBookings)
		r.Get("/owner", h.OwnerBookings)
		r.Get("/owner/report", h.OwnerReport)
		r.Post("/change-status", h.ChangeBookingStatus)
	})

	r.Route("/api/owner", func(r chi.Router) {
		r.Use(auth)
		r.Post("/change-role", h.ChangeRole)
		r.Post("/add-car", h.AddCar)
		r.Post("/image-upload-url", h.ImageUploadURL)
		r.Get("/cars", h.OwnerCars)
		r.Post("/toggle-car", h.ToggleCar)
	})

	return r
}
