package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

// OwnerService - всё, что делает владелец со своими машинами.
type OwnerService struct {
	users  UsersRepo
	cars   CarsRepo
	images ImageStore
}

func NewOwnerService(users UsersRepo, cars CarsRepo, images ImageStore) *OwnerService {
	return &OwnerService{users: users, cars: cars, images: images}
}

// CarInput - поля новой машины.
type CarInput struct {
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	Image        string  `json:"image"`
	Year         int     `json:"year"`
	Category     string  `json:"category"`
	SeatingCap   int     `json:"seating_capacity"`
	FuelType     string  `json:"fuel_type"`
	Transmission string  `json:"transmission"`
	PricePerDay  float64 `json:"pricePerDay"`
	Location     string  `json:"location"`
	Description  string  `json:"description"`
}

// requireOwner проверяет, что пользователь существует и имеет роль owner.
func requireOwner(ctx context.Context, users UsersRepo, userID uuid.UUID) (models.User, error) {
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return models.User{}, serr.New(serr.ErrUnauthorized, "Not authorized")
		}
		return models.User{}, err
	}
	if !u.IsOwner() {
		return models.User{}, serr.New(serr.ErrForbidden, "Unauthorized")
	}
	return u, nil
}

// ChangeRole делает пользователя владельцем. Повторный вызов ничего не ломает.
func (s *OwnerService) ChangeRole(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.UpdateRole(ctx, userID, models.RoleOwner); err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return serr.New(serr.ErrUnauthorized, "Not authorized")
		}
		return err
	}
	return nil
}

// AddCar выставляет новую машину владельца.
func (s *OwnerService) AddCar(ctx context.Context, ownerID uuid.UUID, in CarInput) (models.Car, error) {
	if _, err := requireOwner(ctx, s.users, ownerID); err != nil {
		return models.Car{}, err
	}

	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.Location = strings.TrimSpace(in.Location)
	if in.Brand == "" || in.Model == "" || in.Location == "" || in.PricePerDay <= 0 || in.SeatingCap <= 0 {
		return models.Car{}, serr.New(serr.ErrInvalidInput, "Fill all the fields")
	}

	return s.cars.Create(ctx, models.Car{
		OwnerID:      ownerID,
		Brand:        in.Brand,
		Model:        in.Model,
		Image:        strings.TrimSpace(in.Image),
		Year:         in.Year,
		Category:     in.Category,
		SeatingCap:   in.SeatingCap,
		FuelType:     in.FuelType,
		Transmission: in.Transmission,
		PricePerDay:  in.PricePerDay,
		Location:     in.Location,
		Description:  in.Description,
	})
}

// ImageUploadURL выдаёт подписанную ссылку для загрузки фото машины.
func (s *OwnerService) ImageUploadURL(ctx context.Context, ownerID uuid.UUID, contentType string) (ImageUpload, error) {
	if _, err := requireOwner(ctx, s.users, ownerID); err != nil {
		return ImageUpload{}, err
	}
	if s.images == nil {
		return ImageUpload{}, serr.New(serr.ErrNotConfigured, "Image storage is not configured")
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(contentType, "image/") {
		return ImageUpload{}, serr.New(serr.ErrInvalidInput, "Only images can be uploaded")
	}
	return s.images.PresignUpload(ctx, ownerID, contentType)
}

// ListCars - машины владельца.
func (s *OwnerService) ListCars(ctx context.Context, ownerID uuid.UUID) ([]models.Car, error) {
	if _, err := requireOwner(ctx, s.users, ownerID); err != nil {
		return nil, err
	}
	return s.cars.ListByOwner(ctx, ownerID)
}

// ToggleCar переключает доступность машины и возвращает новое значение.
func (s *OwnerService) ToggleCar(ctx context.Context, ownerID uuid.UUID, carID string) (bool, error) {
	if _, err := requireOwner(ctx, s.users, ownerID); err != nil {
		return false, err
	}

	id, ok := parseID(carID)
	if !ok {
		return false, serr.New(serr.ErrNotFound, "Car not found")
	}
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return false, serr.New(serr.ErrNotFound, "Car not found")
		}
		return false, err
	}
	if car.OwnerID != ownerID {
		return false, serr.New(serr.ErrForbidden, "Unauthorized")
	}

	available := !car.IsAvailable
	if err := s.cars.SetAvailability(ctx, id, available); err != nil {
		return false, err
	}
	return available, nil
}
