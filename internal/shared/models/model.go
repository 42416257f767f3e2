// Package models содержит JSON-контракт HTTP API, общий для сервера и CLI-клиента.
//
// Каждый ответ сервера - конверт {success, message, ...}; при ошибке success=false,
// а message содержит текст для пользователя.
package models

import "time"

// MessageResponse - ответ без данных.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RegisterRequest - POST /api/user/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest - POST /api/user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse - ответ регистрации и входа.
type TokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// ForgotPasswordRequest - шаг 1 сброса пароля.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest - шаг 2 сброса пароля.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResetPasswordRequest - шаг 3 сброса пароля.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ChangeStatusRequest - POST /api/bookings/change-status.
type ChangeStatusRequest struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

// UserView - профиль пользователя, как его видит клиент.
type UserView struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Image string `json:"image"`
}

// UserResponse - GET /api/user/data.
type UserResponse struct {
	Success bool     `json:"success"`
	User    UserView `json:"user"`
}

// BookingCarView - машина внутри бронирования.
type BookingCarView struct {
	ID    string `json:"_id"`
	Brand string `json:"brand"`
	Model string `json:"model"`
	Image string `json:"image"`
}

// BookingView - бронирование, как его видит клиент.
type BookingView struct {
	ID          string         `json:"_id"`
	Car         BookingCarView `json:"car"`
	Name        string         `json:"name"`
	PhoneNumber string         `json:"phoneNumber"`
	PickupDate  time.Time      `json:"pickupDate"`
	ReturnDate  time.Time      `json:"returnDate"`
	Price       float64        `json:"price"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// BookingsResponse - списки бронирований.
type BookingsResponse struct {
	Success  bool          `json:"success"`
	Bookings []BookingView `json:"bookings"`
}
