// Методы клиента для бронирований владельца.
package api

import "github.com/IvanChernomyrdin/go-carrental/internal/shared/models"

// OwnerBookings возвращает бронирования машин владельца, новые первыми.
func (c *Client) OwnerBookings(token string) ([]models.BookingView, error) {
	var resp models.BookingsResponse
	if err := c.GetJSON("/api/bookings/owner", &resp, token); err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}

// UserBookings возвращает бронирования, сделанные пользователем.
func (c *Client) UserBookings(token string) ([]models.BookingView, error) {
	var resp models.BookingsResponse
	if err := c.GetJSON("/api/bookings/user", &resp, token); err != nil {
		return nil, err
	}
	return resp.Bookings, nil
}

// ChangeStatus меняет статус бронирования.
func (c *Client) ChangeStatus(token, bookingID, status string) (string, error) {
	var resp models.MessageResponse
	err := c.PostJSON("/api/bookings/change-status", models.ChangeStatusRequest{
		BookingID: bookingID,
		Status:    status,
	}, &resp, token)
	return resp.Message, err
}

// OwnerReport скачивает PDF-отчёт по бронированиям владельца.
func (c *Client) OwnerReport(token string) ([]byte, error) {
	return c.GetBytes("/api/bookings/owner/report", "application/pdf", token)
}
