// HTTP-хендлеры кабинета владельца
package api

import (
	"net/http"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service"
)

// AddCarRequest - новая машина.
type AddCarRequest = service.CarInput

// ImageUploadRequest - тип загружаемого файла.
type ImageUploadRequest struct {
	ContentType string `json:"contentType"`
}

// ImageUploadResponse - подписанная ссылка для PUT.
type ImageUploadResponse struct {
	Success bool `json:"success"`
	service.ImageUpload
}

// ToggleCarRequest - id машины.
type ToggleCarRequest struct {
	CarID string `json:"carId"`
}

// CarResponse - одна машина.
type CarResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Car     models.Car `json:"car"`
}

// ToggleCarResponse - новое значение доступности.
type ToggleCarResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	IsAvailable bool   `json:"isAvaliable"`
}

// ChangeRole делает текущего пользователя владельцем.
//
// @Summary      Become owner
// @Tags         owner
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MessageResponse "Now you can list cars"
// @Router       /api/owner/change-role [post]
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Owner.ChangeRole(r.Context(), userID); err != nil {
		h.fail(w, r, "change role", err, "user_id", userID)
		return
	}

	WriteMessage(w, "Now you can list cars")
}

// AddCar добавляет машину владельца.
//
// @Summary      Add car
// @Tags         owner
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AddCarRequest true "Car"
// @Success      200 {object} CarResponse
// @Failure      400 {object} ErrorResponse "Fill all the fields"
// @Failure      403 {object} ErrorResponse "Unauthorized"
// @Router       /api/owner/add-car [post]
func (h *Handler) AddCar(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req AddCarRequest
	if !decode(w, r, &req) {
		return
	}

	car, err := h.Svc.Owner.AddCar(r.Context(), ownerID, req)
	if err != nil {
		h.fail(w, r, "add car", err, "user_id", ownerID)
		return
	}

	WriteJSON(w, http.StatusOK, CarResponse{Success: true, Message: "Car Added", Car: car})
}

// ImageUploadURL выдаёт ссылку для загрузки фото машины в S3.
//
// @Summary      Presigned car image upload
// @Tags         owner
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ImageUploadRequest true "Content type"
// @Success      200 {object} ImageUploadResponse
// @Failure      400 {object} ErrorResponse "Only images can be uploaded"
// @Failure      501 {object} ErrorResponse "Image storage is not configured"
// @Router       /api/owner/image-upload-url [post]
func (h *Handler) ImageUploadURL(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ImageUploadRequest
	if !decode(w, r, &req) {
		return
	}

	up, err := h.Svc.Owner.ImageUploadURL(r.Context(), ownerID, req.ContentType)
	if err != nil {
		h.fail(w, r, "image upload url", err, "user_id", ownerID)
		return
	}

	WriteJSON(w, http.StatusOK, ImageUploadResponse{Success: true, ImageUpload: up})
}

// OwnerCars - машины владельца.
//
// @Summary      Owner cars
// @Tags         owner
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} CarsResponse
// @Failure      403 {object} ErrorResponse "Unauthorized"
// @Router       /api/owner/cars [get]
func (h *Handler) OwnerCars(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	cars, err := h.Svc.Owner.ListCars(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, "owner cars", err, "user_id", ownerID)
		return
	}
	if cars == nil {
		cars = []models.Car{}
	}

	WriteJSON(w, http.StatusOK, CarsResponse{Success: true, Cars: cars})
}

// ToggleCar переключает доступность машины.
//
// @Summary      Toggle car availability
// @Tags         owner
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ToggleCarRequest true "Car id"
// @Success      200 {object} ToggleCarResponse
// @Failure      403 {object} ErrorResponse "Unauthorized"
// @Failure      404 {object} ErrorResponse "Car not found"
// @Router       /api/owner/toggle-car [post]
func (h *Handler) ToggleCar(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ToggleCarRequest
	if !decode(w, r, &req) {
		return
	}

	available, err := h.Svc.Owner.ToggleCar(r.Context(), ownerID, req.CarID)
	if err != nil {
		h.fail(w, r, "toggle car", err, "user_id", ownerID, "car_id", req.CarID)
		return
	}

	WriteJSON(w, http.StatusOK, ToggleCarResponse{Success: true, Message: "Availability Toggled", IsAvailable: available})
}
