package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rizkyhp/medremind/internal/domain"
	"github.com/rizkyhp/medremind/internal/observability"
	"github.com/rizkyhp/medremind/internal/repository"
)

const scheduledDateLayout = "2006-01-02"

type LogService interface {
	CreateOrUpdate(ctx context.Context, entry *domain.LogEntry) (*domain.LogEntry, error)
	GetByID(ctx context.Context, id string) (*domain.LogEntry, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.LogEntry, error)
}

type ActionService interface {
	Apply(ctx context.Context, logID string, action domain.Action) error
}

type LogHandler struct {
	logs    LogService
	actions ActionService
}

func NewLogHandler(logs LogService, actions ActionService) (*LogHandler, error) {
	if logs == nil {
		return nil, fmt.Errorf("log service is required")
	}
	if actions == nil {
		return nil, fmt.Errorf("action service is required")
	}
	return &LogHandler{logs: logs, actions: actions}, nil
}

func RegisterLogRoutes(router fiber.Router, logs LogService, actions ActionService) error {
	h, err := NewLogHandler(logs, actions)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/logs", h.CreateLog)
	v1.Get("/logs", h.ListLogs)
	v1.Get("/logs/:id", h.GetLog)
	v1.Post("/logs/:id/action", h.ApplyAction)

	return nil
}

type createLogRequest struct {
	UserID        string  `json:"userId"`
	MedicationID  string  `json:"medicationId"`
	MedName       string  `json:"medName"`
	Dosage        string  `json:"dosage"`
	ScheduledDate string  `json:"scheduledDate"`
	ReminderTime  string  `json:"reminderTime"`
	Instructions  *string `json:"instructions,omitempty"`
}

type actionRequest struct {
	Action string `json:"action"`
}

type logResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	MedicationID  string     `json:"medicationId"`
	MedName       string     `json:"medName"`
	Dosage        string     `json:"dosage"`
	ScheduledDate string     `json:"scheduledDate"`
	ReminderTime  string     `json:"reminderTime"`
	TakenStatus   string     `json:"takenStatus"`
	TakenAt       *time.Time `json:"takenAt,omitempty"`
	Instructions  *string    `json:"instructions,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt,omitempty"`
}

func (h *LogHandler) CreateLog(c *fiber.Ctx) error {
	var req createLogRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	scheduledDate, err := time.Parse(scheduledDateLayout, strings.TrimSpace(req.ScheduledDate))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid scheduledDate, expected YYYY-MM-DD")
	}

	entry := domain.LogEntry{
		UserID:        req.UserID,
		MedicationID:  req.MedicationID,
		MedName:       req.MedName,
		Dosage:        req.Dosage,
		ScheduledDate: scheduledDate,
		ReminderTime:  req.ReminderTime,
		TakenStatus:   domain.StatusPending,
		Instructions:  req.Instructions,
	}

	ctx := observability.WithCorrelationID(c.Context(), requestCorrelationID(c))
	created, err := h.logs.CreateOrUpdate(ctx, &entry)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toLogResponse(created))
}

func (h *LogHandler) GetLog(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	entry, err := h.logs.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toLogResponse(entry))
}

func (h *LogHandler) ListLogs(c *fiber.Ctx) error {
	params := repository.ListParams{
		UserID: strings.TrimSpace(c.Query("userId")),
	}

	if rawDate := strings.TrimSpace(c.Query("date")); rawDate != "" {
		date, err := time.Parse(scheduledDateLayout, rawDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
		params.Date = &date
	}

	entries, err := h.logs.List(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]logResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toLogResponse(&entries[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

// ApplyAction receives the user's response to a fired notification. The
// store is updated (or a new fire armed) before the response goes out, and
// the body is plain text because the caller is a notification action button,
// not the app UI.
func (h *LogHandler) ApplyAction(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))

	var req actionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	action, err := domain.ParseActionFromString(req.Action)
	if err != nil {
		return toHTTPError(err)
	}

	if err := h.actions.Apply(c.Context(), id, action); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).SendString(actionConfirmation(action))
}

func actionConfirmation(action domain.Action) string {
	switch action {
	case domain.ActionTaken:
		return "taken recorded"
	case domain.ActionRemind:
		return "reminder snoozed"
	case domain.ActionNotTaken:
		return "taken reverted"
	default:
		return "ok"
	}
}

func toLogResponse(e *domain.LogEntry) logResponse {
	return logResponse{
		ID:            e.ID,
		UserID:        e.UserID,
		MedicationID:  e.MedicationID,
		MedName:       e.MedName,
		Dosage:        e.Dosage,
		ScheduledDate: e.ScheduledDate.Format(scheduledDateLayout),
		ReminderTime:  e.ReminderTime,
		TakenStatus:   e.TakenStatus.String(),
		TakenAt:       e.TakenAt,
		Instructions:  e.Instructions,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func requestCorrelationID(c *fiber.Ctx) string {
	if correlationID := strings.TrimSpace(c.Get("X-Correlation-ID")); correlationID != "" {
		return correlationID
	}
	return uuid.NewString()
}
