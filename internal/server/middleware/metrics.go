package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestObserver - приёмник метрик запроса (реализуется metrics.Metrics).
type RequestObserver interface {
	ObserveRequest(method, route string, status int, seconds float64)
}

// MetricsMiddleware считает запросы и время ответа.
//
// В метку route попадает шаблон chi (/api/bookings/{id}), а не сырой путь,
// чтобы не плодить серии. Неизвестные пути идут под меткой "unmatched".
func MetricsMiddleware(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wr := &ResponseWriter{ResponseWriter: w}
			next.ServeHTTP(wr, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			obs.ObserveRequest(r.Method, route, wr.status(), time.Since(start).Seconds())
		})
	}
}
