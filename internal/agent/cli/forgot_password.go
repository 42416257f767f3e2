package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-carrental/internal/agent/api"
)

const (
	otpLength         = 6
	minPasswordLength = 8
	maxAttempts       = 3
)

// NewForgotPasswordCmd - мастер сброса пароля из трёх шагов.
//
//  1. запрос кода на email;
//  2. ввод и проверка кода (до трёх попыток при неверном коде);
//  3. ввод нового пароля дважды, без эха, и сброс.
//
// Код можно передать флагом --otp, тогда шаг 2 выполняется один раз без вопроса.
//
//	carrent forgot-password --email bob@example.com
func NewForgotPasswordCmd(app *App) *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Сбросить забытый пароль по коду из письма",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := NewPrompter(cmd)
			out := cmd.OutOrStdout()
			c := app.client()

			email = strings.TrimSpace(email)
			if email == "" {
				line, err := p.Line("Email: ")
				if err != nil {
					return err
				}
				email = strings.TrimSpace(line)
			}

			// шаг 1
			msg, err := c.ForgotPassword(email)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, msg)

			// шаг 2
			code, err := verifyStep(p, c, email, otp, out)
			if err != nil {
				return err
			}

			// шаг 3
			password, err := newPasswordStep(p, out)
			if err != nil {
				return err
			}

			msg, err = c.ResetPassword(email, code, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, msg)
			fmt.Fprintln(out, "You can now log in with the new password.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	cmd.Flags().StringVar(&otp, "otp", "", "code from the email (prompted when empty)")

	return cmd
}

func verifyStep(p *Prompter, c *api.Client, email, preset string, out io.Writer) (string, error) {
	if preset != "" {
		if err := checkOTPFormat(preset); err != nil {
			return "", err
		}
		msg, err := c.VerifyOTP(email, preset)
		if err != nil {
			return "", err
		}
		fmt.Fprintln(out, msg)
		return preset, nil
	}

	for attempt := 1; ; attempt++ {
		code, err := p.Line("Enter the code from the email: ")
		if err != nil {
			return "", err
		}
		code = strings.TrimSpace(code)

		if err := checkOTPFormat(code); err != nil {
			if attempt == maxAttempts {
				return "", err
			}
			fmt.Fprintln(out, err)
			continue
		}

		msg, err := c.VerifyOTP(email, code)
		if err == nil {
			fmt.Fprintln(out, msg)
			return code, nil
		}
		// повторяем только неверный код; просроченный или отсутствующий запрос не исправить вводом
		if !isWrongCode(err) || attempt == maxAttempts {
			return "", err
		}
		fmt.Fprintln(out, err)
	}
}

func newPasswordStep(p *Prompter, out io.Writer) (string, error) {
	for attempt := 1; ; attempt++ {
		pw, err := p.Secret("New password: ")
		if err != nil {
			return "", err
		}
		confirm, err := p.Secret("Confirm password: ")
		if err != nil {
			return "", err
		}

		err = checkNewPassword(pw, confirm)
		if err == nil {
			return pw, nil
		}
		if attempt == maxAttempts {
			return "", err
		}
		fmt.Fprintln(out, err)
	}
}

func checkOTPFormat(code string) error {
	if len(code) != otpLength {
		return fmt.Errorf("OTP must be %d digits", otpLength)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return fmt.Errorf("OTP must be %d digits", otpLength)
		}
	}
	return nil
}

func checkNewPassword(pw, confirm string) error {
	if utf8.RuneCountInString(pw) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if pw != confirm {
		return errors.New("passwords do not match")
	}
	return nil
}

func isWrongCode(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && apiErr.Message == "Invalid OTP"
}
