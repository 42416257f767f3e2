package models

import (
	"time"

	"github.com/google/uuid"
)

type Car struct {
	ID           uuid.UUID `json:"_id"`
	OwnerID      uuid.UUID `json:"owner"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Image        string    `json:"image"`
	Year         int       `json:"year"`
	Category     string    `json:"category"`
	SeatingCap   int       `json:"seating_capacity"`
	FuelType     string    `json:"fuel_type"`
	Transmission string    `json:"transmission"`
	PricePerDay  float64   `json:"pricePerDay"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	IsAvailable  bool      `json:"isAvaliable"` // опечатка из контракта клиента
	CreatedAt    time.Time `json:"createdAt"`
}
