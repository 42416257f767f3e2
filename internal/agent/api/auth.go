// Методы клиента для регистрации, входа и профиля.
package api

import "github.com/IvanChernomyrdin/go-carrental/internal/shared/models"

// Register регистрирует пользователя и возвращает access-токен.
func (c *Client) Register(name, email, password string) (string, error) {
	var resp models.TokenResponse
	err := c.PostJSON("/api/user/register", models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &resp, "")
	return resp.Token, err
}

// Login выполняет вход и возвращает access-токен.
func (c *Client) Login(email, password string) (string, error) {
	var resp models.TokenResponse
	err := c.PostJSON("/api/user/login", models.LoginRequest{Email: email, Password: password}, &resp, "")
	return resp.Token, err
}

// Me возвращает профиль владельца токена.
func (c *Client) Me(token string) (models.UserView, error) {
	var resp models.UserResponse
	err := c.GetJSON("/api/user/data", &resp, token)
	return resp.User, err
}

// BecomeOwner переводит пользователя в роль владельца.
func (c *Client) BecomeOwner(token string) (string, error) {
	var resp models.MessageResponse
	err := c.PostJSON("/api/owner/change-role", nil, &resp, token)
	return resp.Message, err
}
