// Package errors содержит общие доменные ошибки приложения
// и утилиты для error wrapping.
//
// Эти ошибки используются в service и repository слоях
// и маппятся на HTTP-статусы в api слое.
package errors

import "errors"

var (
	// Входные данные невалидны (пустые поля, неправильный формат и т.п.)
	ErrInvalidInput = errors.New("invalid input")
	// Неверные учётные данные
	ErrInvalidCredentials = errors.New("invalid credentials")
	// Получена непредвиденная ошибка
	ErrInternal = errors.New("internal error")
	// Полученные JSON данные с ошибками
	ErrBadJSON = errors.New("bad json")
	// Неавторизован
	ErrUnauthorized = errors.New("unauthorized")
	// Нет прав на ресурс (чужое бронирование, не владелец и т.п.)
	ErrForbidden = errors.New("forbidden")
	// Ресурс уже существует (например email уже занят)
	ErrAlreadyExists = errors.New("already exists")
	// Ресурс не найден
	ErrNotFound = errors.New("not found")
	// конфликт (к примеру при обновлении в бд)
	ErrConflict = errors.New("conflict")
	// функция выключена в конфиге (например S3)
	ErrNotConfigured = errors.New("not configured")
)

// сброс пароля по одноразовому коду
var (
	// запроса на сброс нет (или код уже использован)
	ErrNoPendingRequest = errors.New("no pending reset request")
	ErrOTPExpired       = errors.New("otp expired")
	ErrOTPMismatch      = errors.New("otp mismatch")
	// письмо не ушло
	ErrTransport       = errors.New("mail transport error")
	ErrTooManyRequests = errors.New("too many requests")
)

// бронирования
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCarUnavailable    = errors.New("car unavailable")
)

// DomainError - ошибка с человекочитаемым сообщением для клиента.
//
// Kind - одна из sentinel-ошибок пакета, по ней api слой выбирает HTTP-статус.
// Msg - текст, который уходит в поле message ответа.
// Err - исходная причина (ошибка SMTP, драйвера и т.п.); клиенту не показывается, только в лог.
type DomainError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *DomainError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "unknown error"
}

// Unwrap отдаёт и Kind, и причину: errors.Is(err, ErrTransport) и errors.Is(err, smtpErr) оба работают.
func (e *DomainError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New создаёт DomainError заданного вида с сообщением.
func New(kind error, msg string) error {
	return &DomainError{Kind: kind, Msg: msg}
}

// Wrap - то же, что New, но с сохранением причины.
func Wrap(kind error, msg string, cause error) error {
	return &DomainError{Kind: kind, Msg: msg, Err: cause}
}

// Cause возвращает причину первой DomainError в цепочке или nil.
func Cause(err error) error {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Err
	}
	return nil
}

// Message возвращает сообщение для клиента.
//
// Для DomainError - его Msg, для всего остального - fallback:
// тексты драйверов и sentinel-ошибок наружу не уходят.
func Message(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) && de.Msg != "" {
		return de.Msg
	}
	return fallback
}
