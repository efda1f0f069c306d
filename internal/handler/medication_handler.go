package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rizkyhp/medremind/internal/domain"
	"github.com/rizkyhp/medremind/internal/repository"
)

type MedicationHandler struct {
	medications repository.MedicationRepository
}

func RegisterMedicationRoutes(router fiber.Router, medications repository.MedicationRepository) error {
	if medications == nil {
		return fmt.Errorf("medication repository is required")
	}
	h := &MedicationHandler{medications: medications}

	v1 := router.Group("/v1")
	v1.Post("/medications", h.CreateMedication)
	v1.Get("/medications/:id", h.GetMedication)

	return nil
}

type createMedicationRequest struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	DoseQuantity int    `json:"doseQuantity"`
	Stock        int    `json:"stock"`
}

type medicationResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage"`
	DoseQuantity int       `json:"doseQuantity"`
	Stock        int       `json:"stock"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

func (h *MedicationHandler) CreateMedication(c *fiber.Ctx) error {
	var req createMedicationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	medication := domain.Medication{
		ID:           uuid.NewString(),
		UserID:       strings.TrimSpace(req.UserID),
		Name:         strings.TrimSpace(req.Name),
		Dosage:       strings.TrimSpace(req.Dosage),
		DoseQuantity: req.DoseQuantity,
		Stock:        req.Stock,
	}
	if err := medication.Validate(); err != nil {
		return toHTTPError(err)
	}

	if err := h.medications.Create(c.Context(), &medication); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toMedicationResponse(&medication))
}

func (h *MedicationHandler) GetMedication(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	medication, err := h.medications.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toMedicationResponse(medication))
}

func toMedicationResponse(m *domain.Medication) medicationResponse {
	return medicationResponse{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		DoseQuantity: m.DoseQuantity,
		Stock:        m.Stock,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
