// HTTP-хендлеры сброса забытого пароля по коду из письма
package api

import (
	"net/http"

	wire "github.com/IvanChernomyrdin/go-carrental/internal/shared/models"
)

type (
	// ForgotPasswordRequest - шаг 1: email, на который нужно выслать код.
	ForgotPasswordRequest = wire.ForgotPasswordRequest
	// VerifyOTPRequest - шаг 2: проверка кода.
	VerifyOTPRequest = wire.VerifyOTPRequest
	// ResetPasswordRequest - шаг 3: новый пароль.
	ResetPasswordRequest = wire.ResetPasswordRequest
)

// ForgotPassword выпускает одноразовый код и отправляет его письмом.
// Сам код в ответе не возвращается.
//
// @Summary      Request password reset OTP
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email"
// @Success      200 {object} MessageResponse "OTP sent to your email"
// @Failure      400 {object} ErrorResponse "Email is required"
// @Failure      404 {object} ErrorResponse "User not found"
// @Failure      429 {object} ErrorResponse "Please wait before requesting another OTP"
// @Failure      502 {object} ErrorResponse "Failed to send OTP email"
// @Router       /api/user/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Svc.Password.RequestReset(r.Context(), req.Email); err != nil {
		h.fail(w, r, "forgot password", err, "email", req.Email)
		return
	}

	WriteMessage(w, "OTP sent to your email")
}

// VerifyOTP проверяет код, ничего не меняя.
//
// @Summary      Verify password reset OTP
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        request body VerifyOTPRequest true "Email and OTP"
// @Success      200 {object} MessageResponse "OTP verified successfully"
// @Failure      400 {object} ErrorResponse "No OTP request found / OTP has expired / Invalid OTP"
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /api/user/verify-otp [post]
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Svc.Password.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		h.fail(w, r, "verify otp", err, "email", req.Email)
		return
	}

	WriteMessage(w, "OTP verified successfully")
}

// ResetPassword меняет пароль и гасит код.
//
// @Summary      Reset password with OTP
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Email, OTP and new password"
// @Success      200 {object} MessageResponse "Password reset successfully"
// @Failure      400 {object} ErrorResponse "All fields are required / Password must be at least 8 characters / OTP errors"
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /api/user/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Svc.Password.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		h.fail(w, r, "reset password", err, "email", req.Email)
		return
	}

	WriteMessage(w, "Password reset successfully")
}
