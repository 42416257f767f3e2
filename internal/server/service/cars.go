package service

import (
	"context"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
)

// CarsService - публичный каталог машин.
type CarsService struct {
	cars CarsRepo
}

func NewCarsService(cars CarsRepo) *CarsService {
	return &CarsService{cars: cars}
}

// ListAvailable возвращает машины, которые сейчас можно забронировать.
func (s *CarsService) ListAvailable(ctx context.Context) ([]models.Car, error) {
	return s.cars.ListAvailable(ctx)
}
