package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegisterCmd создаёт команду регистрации.
//
// После успешной регистрации токен сохраняется, отдельный login не нужен.
//
//	carrent register --name Bob --email bob@example.com --password StrongPass123
func NewRegisterCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Регистрация нового пользователя",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := NewPrompter(cmd).Secret("Password: ")
				if err != nil {
					return err
				}
				password = pw
			}

			token, err := app.client().Register(name, email, password)
			if err != nil {
				return err
			}

			app.Creds.Token = token
			app.Creds.Email = email
			app.Creds.Server = app.ServerURL
			if err := app.saveCreds(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "registered, logged in as", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")

	return cmd
}
