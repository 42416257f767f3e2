package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-carrental/internal/agent/config"
)

// NewLoginCmd создаёт команду входа.
//
// Полученный токен сохраняется в файл учётных данных вместе с адресом сервера.
// Без --password пароль спрашивается без эха.
//
//	carrent login --email bob@example.com
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Вход (сохранить токен)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := NewPrompter(cmd).Secret("Password: ")
				if err != nil {
					return err
				}
				password = pw
			}

			token, err := app.client().Login(email, password)
			if err != nil {
				return err
			}

			app.Creds.Token = token
			app.Creds.Email = email
			app.Creds.Server = app.ServerURL
			if err := app.saveCreds(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "login ok (token saved)")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email for login")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	cmd.MarkFlagRequired("email")

	return cmd
}

// NewLogoutCmd удаляет сохранённый токен.
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Забыть сохранённый токен",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Remove(app.CredsPath); err != nil {
				return err
			}
			app.Creds = &config.Credentials{}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

// NewMeCmd показывает профиль владельца токена.
func NewMeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Показать текущего пользователя",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			u, err := app.client().Me(token)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "id=%s\nname=%s\nemail=%s\nrole=%s\n", u.ID, u.Name, u.Email, u.Role)
			return nil
		},
	}
}

// NewBecomeOwnerCmd переводит пользователя в роль владельца.
func NewBecomeOwnerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "become-owner",
		Short: "Стать владельцем (чтобы сдавать машины)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			msg, err := app.client().BecomeOwner(token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
