package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-carrental/internal/shared/models"
)

const statusPending = "pending"

var bookingStatuses = []string{"pending", "confirmed", "cancelled"}

// NewBookingsCmd - группа команд для бронирований.
func NewBookingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Бронирования: список, смена статуса, отчёт",
	}

	cmd.AddCommand(newBookingsListCmd(app))
	cmd.AddCommand(newBookingsStatusCmd(app))
	cmd.AddCommand(newBookingsReportCmd(app))
	return cmd
}

func newBookingsListCmd(app *App) *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Бронирования моих машин (или мои, с --mine)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			c := app.client()
			var list []models.BookingView
			if mine {
				list, err = c.UserBookings(token)
			} else {
				list, err = c.OwnerBookings(token)
			}
			if err != nil {
				return err
			}

			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no bookings")
				return nil
			}
			return printBookings(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "show bookings I made instead of bookings of my cars")
	return cmd
}

// printBookings выводит таблицу: машина, клиент, даты, сумма, статус.
func printBookings(w io.Writer, list []models.BookingView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCAR\tCUSTOMER\tPHONE\tDATES\tTOTAL\tSTATUS")
	for _, b := range list {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s..%s\t$%.2f\t%s\n",
			b.ID,
			b.Car.Brand, b.Car.Model,
			b.Name,
			b.PhoneNumber,
			b.PickupDate.Format("2006-01-02"), b.ReturnDate.Format("2006-01-02"),
			b.Price,
			b.Status,
		)
	}
	return tw.Flush()
}

// newBookingsStatusCmd меняет статус бронирования.
//
// Менять можно только бронирование в статусе pending: это проверяется
// по списку владельца до отправки запроса. Сервер проверяет переход сам.
func newBookingsStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <booking-id> <" + strings.Join(bookingStatuses, "|") + ">",
		Short: "Сменить статус бронирования (только из pending)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, status := args[0], strings.ToLower(args[1])
			if !slices.Contains(bookingStatuses, status) {
				return fmt.Errorf("unknown status %q: want one of %s", status, strings.Join(bookingStatuses, ", "))
			}

			token, err := app.token()
			if err != nil {
				return err
			}

			c := app.client()
			list, err := c.OwnerBookings(token)
			if err != nil {
				return err
			}

			current, ok := findBooking(list, id)
			if !ok {
				return fmt.Errorf("booking %s not found among your bookings", id)
			}
			if current.Status != statusPending {
				return fmt.Errorf("booking %s is %s: only pending bookings can change status", id, current.Status)
			}

			msg, err := c.ChangeStatus(token, id, status)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newBookingsReportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Скачать PDF-отчёт по бронированиям моих машин",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			pdf, err := app.client().OwnerReport(token)
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, pdf, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report saved to %s (%d bytes)\n", out, len(pdf))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "bookings.pdf", "output file")
	return cmd
}

func findBooking(list []models.BookingView, id string) (models.BookingView, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return models.BookingView{}, false
}
