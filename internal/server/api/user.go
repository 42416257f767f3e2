// HTTP-хендлеры регистрации, логина и профиля
package api

import (
	"net/http"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	wire "github.com/IvanChernomyrdin/go-carrental/internal/shared/models"
)

// Контракт запросов общий с CLI-клиентом.
type (
	RegisterRequest = wire.RegisterRequest
	LoginRequest    = wire.LoginRequest
	TokenResponse   = wire.TokenResponse
)

// UserResponse - профиль текущего пользователя.
type UserResponse struct {
	Success bool        `json:"success"`
	User    models.User `json:"user"`
}

// CarsResponse - список машин.
type CarsResponse struct {
	Success bool         `json:"success"`
	Cars    []models.Car `json:"cars"`
}

// Register обрабатывает регистрацию пользователя.
//
// @Summary      Register user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Register request"
// @Success      200 {object} TokenResponse
// @Failure      400 {object} ErrorResponse "Fill all the fields"
// @Failure      409 {object} ErrorResponse "User already exists"
// @Failure      500 {object} ErrorResponse "Internal server error"
// @Router       /api/user/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	token, err := h.Svc.Auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "register", err, "email", req.Email)
		return
	}

	WriteJSON(w, http.StatusOK, TokenResponse{Success: true, Token: token})
}

// Login обрабатывает вход пользователя.
//
// @Summary      Login
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} TokenResponse
// @Failure      400 {object} ErrorResponse "Email and password are required"
// @Failure      401 {object} ErrorResponse "Invalid Credentials"
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /api/user/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	token, err := h.Svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login", err, "email", req.Email)
		return
	}

	WriteJSON(w, http.StatusOK, TokenResponse{Success: true, Token: token})
}

// UserData возвращает профиль пользователя из токена.
//
// @Summary      Current user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} ErrorResponse "Not authorized"
// @Router       /api/user/data [get]
func (h *Handler) UserData(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	u, err := h.Svc.Auth.GetUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "user data", err, "user_id", userID)
		return
	}

	WriteJSON(w, http.StatusOK, UserResponse{Success: true, User: u})
}

// Cars возвращает машины, доступные для бронирования.
//
// @Summary      Available cars
// @Tags         user
// @Produce      json
// @Success      200 {object} CarsResponse
// @Router       /api/user/cars [get]
func (h *Handler) Cars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.Svc.Cars.ListAvailable(r.Context())
	if err != nil {
		h.fail(w, r, "list cars", err)
		return
	}
	if cars == nil {
		cars = []models.Car{}
	}

	WriteJSON(w, http.StatusOK, CarsResponse{Success: true, Cars: cars})
}
