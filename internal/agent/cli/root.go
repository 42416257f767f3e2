// Package cli реализует командный интерфейс клиента сервиса проката машин.
//
// Пакет отвечает за:
//   - определение root-команды и набора подкоманд;
//   - загрузку сохранённого токена из ~/.carrental/credentials.json;
//   - выполнение команд и вывод результата пользователю.
//
// Точка входа пакета - функция Execute.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-carrental/internal/agent/api"
	"github.com/IvanChernomyrdin/go-carrental/internal/agent/config"
)

const defaultServerURL = "http://127.0.0.1:8080"

// errNotLoggedIn возвращают команды, которым нужен токен.
var errNotLoggedIn = errors.New("not logged in: run `carrent login` first")

// App содержит состояние CLI-приложения, разделяемое между командами.
type App struct {
	// ServerURL - базовый URL сервера.
	ServerURL string

	// CredsPath - путь к файлу с сохранённым токеном.
	CredsPath string
	// Creds - загруженные учётные данные; nil до PersistentPreRunE.
	Creds *config.Credentials
}

// client создаёт API-клиент для текущего сервера.
func (a *App) client() *api.Client {
	return NewAPIClient(a.ServerURL)
}

// token возвращает сохранённый токен или errNotLoggedIn.
func (a *App) token() (string, error) {
	if !a.Creds.LoggedIn() {
		return "", errNotLoggedIn
	}
	return a.Creds.Token, nil
}

// saveCreds записывает текущие учётные данные на диск.
func (a *App) saveCreds() error {
	return config.Save(a.CredsPath, a.Creds)
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// Адрес сервера берётся из --server, затем из CARRENT_SERVER,
// затем из сохранённых учётных данных.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:   "carrent",
		Short: "carrent - консольный клиент сервиса проката машин",
		Long: `carrent - консольный клиент сервиса проката машин.

Примеры:

Регистрация и вход:
  carrent register --name Bob --email bob@example.com --password StrongPass123
  carrent login --email bob@example.com

Сброс забытого пароля (код придёт на почту):
  carrent forgot-password --email bob@example.com

Бронирования владельца:
  carrent become-owner
  carrent bookings list
  carrent bookings status <booking-id> confirmed
  carrent bookings report --out bookings.pdf
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.CredsPath == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				app.CredsPath = p
			}

			creds, err := config.Load(app.CredsPath)
			if err != nil {
				return fmt.Errorf("load credentials: %w", err)
			}
			app.Creds = creds

			if !cmd.Flags().Changed("server") {
				if env := os.Getenv("CARRENT_SERVER"); env != "" {
					app.ServerURL = env
				} else if creds.Server != "" {
					app.ServerURL = creds.Server
				}
			}
			return nil
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", defaultServerURL, "server base URL")
	cmd.PersistentFlags().StringVar(&app.CredsPath, "credentials", "", "credentials file (default ~/.carrental/credentials.json)")

	cmd.AddCommand(NewRegisterCmd(app))
	cmd.AddCommand(NewLoginCmd(app))
	cmd.AddCommand(NewLogoutCmd(app))
	cmd.AddCommand(NewMeCmd(app))
	cmd.AddCommand(NewForgotPasswordCmd(app))
	cmd.AddCommand(NewBecomeOwnerCmd(app))
	cmd.AddCommand(NewBookingsCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// Execute запускает обработку CLI-команд.
//
// При ошибке сообщение выводится в stderr, процесс завершается с кодом 1.
func Execute(buildVersion, buildDate string) {
	if err := NewRootCmd(buildVersion, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
