package api_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/api"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{serr.New(serr.ErrInvalidInput, "Email is required"), http.StatusBadRequest},
		{serr.New(serr.ErrNoPendingRequest, "No OTP request found"), http.StatusBadRequest},
		{serr.New(serr.ErrOTPExpired, "OTP has expired"), http.StatusBadRequest},
		{serr.New(serr.ErrOTPMismatch, "Invalid OTP"), http.StatusBadRequest},
		{serr.New(serr.ErrInvalidCredentials, "Invalid Credentials"), http.StatusUnauthorized},
		{serr.ErrUnauthorized, http.StatusUnauthorized},
		{serr.New(serr.ErrForbidden, "Unauthorized"), http.StatusForbidden},
		{serr.New(serr.ErrNotFound, "Booking not found"), http.StatusNotFound},
		{serr.ErrAlreadyExists, http.StatusConflict},
		{serr.New(serr.ErrInvalidTransition, "x"), http.StatusConflict},
		{serr.ErrCarUnavailable, http.StatusConflict},
		{serr.ErrTooManyRequests, http.StatusTooManyRequests},
		{serr.New(serr.ErrTransport, "Failed to send OTP email"), http.StatusBadGateway},
		{serr.ErrNotConfigured, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		require.Equal(t, c.want, api.StatusOf(c.err), c.err.Error())
	}
}
