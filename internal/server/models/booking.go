package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus - статус бронирования.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// bookingTransitions - куда можно перейти из каждого статуса.
// confirmed и cancelled терминальные.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: nil,
	BookingCancelled: nil,
}

// Valid - известен ли статус.
func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo сообщает, допустим ли переход s -> next.
// Переход в тот же статус допустим всегда (повторная установка ничего не меняет).
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses - что можно предложить владельцу для данного статуса.
func (s BookingStatus) NextStatuses() []BookingStatus {
	return bookingTransitions[s]
}

// BookingCar - краткая карточка машины внутри бронирования.
type BookingCar struct {
	ID    uuid.UUID `json:"_id"`
	Brand string    `json:"brand"`
	Model string    `json:"model"`
	Image string    `json:"image"`
}

type Booking struct {
	ID          uuid.UUID     `json:"_id"`
	Car         BookingCar    `json:"car"`
	OwnerID     uuid.UUID     `json:"owner"`
	UserID      uuid.UUID     `json:"user"`
	Name        string        `json:"name"`
	PhoneNumber string        `json:"phoneNumber"`
	PickupDate  time.Time     `json:"pickupDate"`
	ReturnDate  time.Time     `json:"returnDate"`
	Price       float64       `json:"price"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}
