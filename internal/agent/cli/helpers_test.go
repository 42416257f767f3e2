package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-carrental/internal/agent/cli"
	"github.com/IvanChernomyrdin/go-carrental/internal/agent/config"
	"github.com/IvanChernomyrdin/go-carrental/internal/shared/models"
)

// fakeServer повторяет контракт HTTP API в объёме, нужном командам.
type fakeServer struct {
	*httptest.Server

	mu        sync.Mutex
	otp       string
	otpGone   bool
	password  string
	bookings  []models.BookingView
	changes   []models.ChangeStatusRequest
	verifyHit int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	f := &fakeServer{otp: "482913", password: "oldPassword1"}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/user/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if req.Password != f.password {
			reply(w, http.StatusUnauthorized, models.MessageResponse{Message: "Invalid Credentials"})
			return
		}
		reply(w, http.StatusOK, models.TokenResponse{Success: true, Token: "token-" + req.Email})
	})
	mux.HandleFunc("POST /api/user/register", func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		reply(w, http.StatusOK, models.TokenResponse{Success: true, Token: "token-" + req.Email})
	})
	mux.HandleFunc("GET /api/user/data", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		reply(w, http.StatusOK, models.UserResponse{Success: true, User: models.UserView{
			ID: "u-1", Name: "Olga", Email: "olga@example.com", Role: "owner",
		}})
	})
	mux.HandleFunc("POST /api/user/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		var req models.ForgotPasswordRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "olga@example.com" {
			reply(w, http.StatusNotFound, models.MessageResponse{Message: "User not found"})
			return
		}
		reply(w, http.StatusOK, models.MessageResponse{Success: true, Message: "OTP sent to your email"})
	})
	mux.HandleFunc("POST /api/user/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		var req models.VerifyOTPRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.verifyHit++
		f.check(w, req.OTP, "OTP verified successfully")
	})
	mux.HandleFunc("POST /api/user/reset-password", func(w http.ResponseWriter, r *http.Request) {
		var req models.ResetPasswordRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.check(w, req.OTP, "Password reset successfully") {
			f.password = req.NewPassword
			f.otpGone = true
		}
	})
	mux.HandleFunc("GET /api/bookings/owner", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		reply(w, http.StatusOK, models.BookingsResponse{Success: true, Bookings: f.bookings})
	})
	mux.HandleFunc("GET /api/bookings/user", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		reply(w, http.StatusOK, models.BookingsResponse{Success: true, Bookings: []models.BookingView{}})
	})
	mux.HandleFunc("POST /api/bookings/change-status", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var req models.ChangeStatusRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.changes = append(f.changes, req)
		reply(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Status Updated"})
	})
	mux.HandleFunc("GET /api/bookings/owner/report", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.3 fake"))
	})
	mux.HandleFunc("POST /api/owner/change-role", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		reply(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Now you can list cars"})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// check повторяет порядок проверок сервера: наличие запроса, затем совпадение.
func (f *fakeServer) check(w http.ResponseWriter, otp, okMsg string) bool {
	if f.otpGone {
		reply(w, http.StatusBadRequest, models.MessageResponse{Message: "No OTP request found"})
		return false
	}
	if otp != f.otp {
		reply(w, http.StatusBadRequest, models.MessageResponse{Message: "Invalid OTP"})
		return false
	}
	reply(w, http.StatusOK, models.MessageResponse{Success: true, Message: okMsg})
	return true
}

func authorized(w http.ResponseWriter, r *http.Request) bool {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		reply(w, http.StatusUnauthorized, models.MessageResponse{Message: "Not authorized"})
		return false
	}
	return true
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// env - файл учётных данных во временной директории.
type env struct {
	srv       *fakeServer
	credsPath string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		srv:       newFakeServer(t),
		credsPath: filepath.Join(t.TempDir(), "credentials.json"),
	}
}

func (e *env) login(t *testing.T) {
	t.Helper()
	require.NoError(t, config.Save(e.credsPath, &config.Credentials{Token: "token-olga", Server: e.srv.URL}))
}

// run выполняет команду через root и возвращает stdout.
func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCmd("1.2.3", "2026-10-18")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", e.srv.URL, "--credentials", e.credsPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}
