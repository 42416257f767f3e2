// Методы клиента для сброса забытого пароля.
//
// Шаги выполняются строго по порядку: ForgotPassword, VerifyOTP, ResetPassword.
// Каждый метод возвращает сообщение сервера.
package api

import "github.com/IvanChernomyrdin/go-carrental/internal/shared/models"

// ForgotPassword просит сервер выслать код на email.
func (c *Client) ForgotPassword(email string) (string, error) {
	var resp models.MessageResponse
	err := c.PostJSON("/api/user/forgot-password", models.ForgotPasswordRequest{Email: email}, &resp, "")
	return resp.Message, err
}

// VerifyOTP проверяет код, не меняя пароль.
func (c *Client) VerifyOTP(email, otp string) (string, error) {
	var resp models.MessageResponse
	err := c.PostJSON("/api/user/verify-otp", models.VerifyOTPRequest{Email: email, OTP: otp}, &resp, "")
	return resp.Message, err
}

// ResetPassword устанавливает новый пароль по коду.
func (c *Client) ResetPassword(email, otp, newPassword string) (string, error) {
	var resp models.MessageResponse
	err := c.PostJSON("/api/user/reset-password", models.ResetPasswordRequest{
		Email:       email,
		OTP:         otp,
		NewPassword: newPassword,
	}, &resp, "")
	return resp.Message, err
}
