// Package report строит PDF-отчёт владельца по бронированиям (gofpdf).
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
)

// Currency - знак валюты в отчёте.
const Currency = "$"

// PDF - генератор отчётов.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

// Summary - итоги по бронированиям.
type Summary struct {
	Total     int
	Pending   int
	Confirmed int
	Cancelled int
	// Revenue - сумма подтверждённых бронирований.
	Revenue float64
}

// Summarize считает итоги по списку.
func Summarize(list []models.Booking) Summary {
	var s Summary
	for _, b := range list {
		s.Total++
		switch b.Status {
		case models.BookingPending:
			s.Pending++
		case models.BookingConfirmed:
			s.Confirmed++
			s.Revenue += b.Price
		case models.BookingCancelled:
			s.Cancelled++
		}
	}
	return s
}

var columns = []struct {
	title string
	width float64
}{
	{"Car", 40},
	{"Customer", 35},
	{"Phone", 30},
	{"Dates", 45},
	{"Total", 20},
	{"Status", 20},
}

// BookingsReport возвращает PDF: шапка с владельцем, таблица бронирований, итоги.
func (p *PDF) BookingsReport(owner models.User, list []models.Booking, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Bookings report", false)
	pdf.SetAuthor("carrental", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Bookings report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Owner: %s <%s>", owner.Name, owner.Email)))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Generated: "+generatedAt.Format("2006-01-02 15:04 MST"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for _, c := range columns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, b := range list {
		row := []string{
			tr(b.Car.Brand + " " + b.Car.Model),
			tr(b.Name),
			tr(b.PhoneNumber),
			b.PickupDate.Format("2006-01-02") + " - " + b.ReturnDate.Format("2006-01-02"),
			Money(b.Price),
			string(b.Status),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 7, row[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(list) == 0 {
		pdf.CellFormat(190, 7, "No bookings yet", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	s := Summarize(list)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %d  (pending %d, confirmed %d, cancelled %d)",
		s.Total, s.Pending, s.Confirmed, s.Cancelled))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Confirmed revenue: "+Money(s.Revenue))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Money форматирует сумму: $1234.50.
func Money(v float64) string {
	return fmt.Sprintf("%s%.2f", Currency, v)
}
