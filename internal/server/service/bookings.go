package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

// BookingsService - бронирования: создание клиентом и обработка владельцем.
//
// Переходы статусов проверяются здесь, а не на клиенте:
// pending -> confirmed|cancelled, confirmed и cancelled конечные.
type BookingsService struct {
	users    UsersRepo
	cars     CarsRepo
	bookings BookingsRepo
	reports  ReportRenderer

	now func() time.Time
}

func NewBookingsService(users UsersRepo, cars CarsRepo, bookings BookingsRepo, reports ReportRenderer) *BookingsService {
	return &BookingsService{
		users:    users,
		cars:     cars,
		bookings: bookings,
		reports:  reports,
		now:      time.Now,
	}
}

// WithClock подменяет источник времени (для тестов).
func (s *BookingsService) WithClock(now func() time.Time) *BookingsService {
	s.now = now
	return s
}

// BookingInput - данные нового бронирования.
type BookingInput struct {
	CarID       string
	PickupDate  time.Time
	ReturnDate  time.Time
	Name        string
	PhoneNumber string
}

// RentalDays - сколько суток оплачивается: неполные сутки округляются вверх, минимум одни.
func RentalDays(pickup, ret time.Time) int {
	days := int(math.Ceil(ret.Sub(pickup).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Create бронирует доступную машину. Цена = цена за сутки * число суток.
//
// Пересечение дат с другими бронированиями не проверяется.
func (s *BookingsService) Create(ctx context.Context, userID uuid.UUID, in BookingInput) (models.Booking, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.CarID == "" || in.PickupDate.IsZero() || in.ReturnDate.IsZero() || in.Name == "" || in.PhoneNumber == "" {
		return models.Booking{}, serr.New(serr.ErrInvalidInput, "Fill all the fields")
	}
	if in.ReturnDate.Before(in.PickupDate) {
		return models.Booking{}, serr.New(serr.ErrInvalidInput, "Return date must be after pickup date")
	}

	carID, ok := parseID(in.CarID)
	if !ok {
		return models.Booking{}, serr.New(serr.ErrNotFound, "Car not found")
	}
	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return models.Booking{}, serr.New(serr.ErrNotFound, "Car not found")
		}
		return models.Booking{}, err
	}
	if !car.IsAvailable {
		return models.Booking{}, serr.New(serr.ErrCarUnavailable, "Car is not available")
	}

	return s.bookings.Create(ctx, models.Booking{
		Car:         models.BookingCar{ID: car.ID, Brand: car.Brand, Model: car.Model, Image: car.Image},
		OwnerID:     car.OwnerID,
		UserID:      userID,
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		PickupDate:  in.PickupDate,
		ReturnDate:  in.ReturnDate,
		Price:       car.PricePerDay * float64(RentalDays(in.PickupDate, in.ReturnDate)),
	})
}

// ListUser - бронирования текущего пользователя.
func (s *BookingsService) ListUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ListOwner - бронирования машин владельца, новые первыми.
func (s *BookingsService) ListOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error) {
	if _, err := requireOwner(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	return s.bookings.ListByOwner(ctx, ownerID)
}

// ChangeStatus меняет статус бронирования от имени владельца машины.
//
// Установка текущего статуса повторно ничего не пишет и не считается ошибкой.
//
// Ошибки:
//   - ErrInvalidInput - неизвестный статус
//   - ErrNotFound - бронирования нет (в том числе мусорный id)
//   - ErrForbidden - бронирование чужой машины
//   - ErrInvalidTransition - переход запрещён (например из confirmed в cancelled)
func (s *BookingsService) ChangeStatus(ctx context.Context, ownerID uuid.UUID, bookingID, status string) error {
	next := models.BookingStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return serr.New(serr.ErrInvalidInput, "Invalid status")
	}

	id, ok := parseID(bookingID)
	if !ok {
		return serr.New(serr.ErrNotFound, "Booking not found")
	}

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return serr.New(serr.ErrNotFound, "Booking not found")
		}
		return err
	}
	if b.OwnerID != ownerID {
		return serr.New(serr.ErrForbidden, "Unauthorized")
	}

	if b.Status == next {
		return nil
	}
	if !b.Status.CanTransitionTo(next) {
		return serr.New(serr.ErrInvalidTransition, "Cannot change status from "+string(b.Status)+" to "+string(next))
	}

	if err := s.bookings.UpdateStatus(ctx, id, b.Status, next); err != nil {
		if errors.Is(err, serr.ErrInvalidTransition) {
			return serr.New(serr.ErrInvalidTransition, "Booking status was changed by another request")
		}
		return err
	}
	return nil
}

// OwnerReport строит PDF со всеми бронированиями владельца.
func (s *BookingsService) OwnerReport(ctx context.Context, ownerID uuid.UUID) ([]byte, error) {
	owner, err := requireOwner(ctx, s.users, ownerID)
	if err != nil {
		return nil, err
	}
	if s.reports == nil {
		return nil, serr.New(serr.ErrNotConfigured, "Reports are not configured")
	}

	list, err := s.bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	pdf, err := s.reports.BookingsReport(owner, list, s.now())
	if err != nil {
		return nil, serr.Wrap(serr.ErrInternal, "", err)
	}
	return pdf, nil
}
