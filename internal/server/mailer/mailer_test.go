package mailer_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/mailer"
)

func TestSMTPMailer_SendOTP(t *testing.T) {
	var sent *gomail.Message
	m := mailer.NewWithSender("rent@example.com", func(msg *gomail.Message) error {
		sent = msg
		return nil
	})

	require.NoError(t, m.SendOTP(context.Background(), "a@b.com", "482913", 10*time.Minute))
	require.NotNil(t, sent)

	require.Equal(t, []string{"a@b.com"}, sent.GetHeader("To"))
	require.Equal(t, []string{"rent@example.com"}, sent.GetHeader("From"))
	require.Equal(t, []string{mailer.Subject}, sent.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err := sent.WriteTo(&raw)
	require.NoError(t, err)
	require.Contains(t, raw.String(), "482913")
	require.Contains(t, raw.String(), "expire in 10 minutes")
	require.Contains(t, raw.String(), "text/html")
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := mailer.NewWithSender("rent@example.com", func(*gomail.Message) error {
		return errors.New("535 auth failed")
	})

	err := m.SendOTP(context.Background(), "a@b.com", "482913", time.Minute)
	require.Error(t, err)
	require.Contains(t, err.Error(), "535")
}

func TestSMTPMailer_CanceledContext(t *testing.T) {
	called := false
	m := mailer.NewWithSender("rent@example.com", func(*gomail.Message) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, m.SendOTP(ctx, "a@b.com", "482913", time.Minute), context.Canceled)
	require.False(t, called)
}
