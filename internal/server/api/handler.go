// Package api реализует HTTP-слой сервера аренды машин.
//
// Пакет отвечает за:
//   - обработку входящих запросов и формирование ответов (JSON, статусы);
//   - маппинг доменных ошибок (service/repository) в HTTP-коды и сообщения;
//   - единый формат ответа {success, message, ...}, который ждёт веб-клиент.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-carrental/internal/shared/logger"
	wire "github.com/IvanChernomyrdin/go-carrental/internal/shared/models"
)

// Каждый метод если будет возвращать ответ то будет это делать в JSON
// Вынес Content-Type и JSON для удобства
const (
	JsonContentType string = "application/json"
	ContentType     string = "Content-Type"
)

// maxBodyBytes - ограничение на размер JSON-тела запроса.
const maxBodyBytes = 1 << 20

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
//
// Handler содержит:
//   - Svc: сервисный слой (бизнес-логика);
//   - Log: логгер для записи событий и ошибок;
//   - Verifier: компонент проверки JWT и middleware авторизации.
type Handler struct {
	Svc      *service.Services
	Log      *logger.HTTPLogger
	Verifier *middleware.JWTVerifier
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
func NewHandler(svc *service.Services, log *logger.HTTPLogger, verifier *middleware.JWTVerifier) *Handler {
	if log == nil {
		log = logger.NewHTTPLogger()
	}
	return &Handler{
		Svc:      svc,
		Log:      log,
		Verifier: verifier,
	}
}

// MessageResponse - ответ без данных: признак успеха и сообщение.
type MessageResponse = wire.MessageResponse

// ErrorResponse стандартный формат ошибки API.
type ErrorResponse = MessageResponse

// WriteJSON пишет v как JSON с заданным статусом.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage пишет успешный ответ {success:true, message}.
func WriteMessage(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msg})
}

// Вспомогательная функция вывода ошибки
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, ErrorResponse{
		Success: false,
		Message: serr.Message(err, http.StatusText(status)),
	})
}

// StatusOf сопоставляет доменную ошибку HTTP-статусу.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, serr.ErrBadJSON),
		errors.Is(err, serr.ErrInvalidInput),
		errors.Is(err, serr.ErrNoPendingRequest),
		errors.Is(err, serr.ErrOTPExpired),
		errors.Is(err, serr.ErrOTPMismatch):
		return http.StatusBadRequest
	case errors.Is(err, serr.ErrUnauthorized),
		errors.Is(err, serr.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, serr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, serr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, serr.ErrAlreadyExists),
		errors.Is(err, serr.ErrConflict),
		errors.Is(err, serr.ErrInvalidTransition),
		errors.Is(err, serr.ErrCarUnavailable):
		return http.StatusConflict
	case errors.Is(err, serr.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, serr.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, serr.ErrNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// fail отвечает ошибкой и пишет в лог всё, что не является ожидаемым отказом клиенту.
//
// Для 500 клиент получает только "Internal server error", подробности остаются в логе.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error, kv ...any) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		fields := append([]any{"op", op, "uri", r.RequestURI, "error", err}, kv...)
		if cause := serr.Cause(err); cause != nil {
			fields = append(fields, "cause", cause)
		}
		h.Log.Sugar().Errorw("request failed", fields...)
	}
	if status == http.StatusInternalServerError {
		WriteError(w, status, serr.ErrInternal)
		return
	}
	WriteError(w, status, err)
}

// currentUser достаёт id пользователя, положенный AuthMiddleware.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.New(serr.ErrUnauthorized, "Not authorized"))
	}
	return id, ok
}

// decode читает JSON-тело запроса в v. При ошибке сразу отвечает 400.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, serr.New(serr.ErrBadJSON, "Invalid JSON body"))
		return false
	}
	return true
}
