package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rizkyhp/medremind/internal/domain"
	"github.com/rizkyhp/medremind/internal/repository"
)

type ProfileHandler struct {
	profiles repository.ProfileRepository
}

func RegisterProfileRoutes(router fiber.Router, profiles repository.ProfileRepository) error {
	if profiles == nil {
		return fmt.Errorf("profile repository is required")
	}
	h := &ProfileHandler{profiles: profiles}

	v1 := router.Group("/v1")
	v1.Put("/profiles/:userId", h.UpsertProfile)
	v1.Get("/profiles/:userId", h.GetProfile)

	return nil
}

type upsertProfileRequest struct {
	PushToken            *string `json:"pushToken"`
	NotificationsEnabled bool    `json:"notificationsEnabled"`
}

type profileResponse struct {
	UserID               string    `json:"userId"`
	PushToken            *string   `json:"pushToken,omitempty"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	CreatedAt            time.Time `json:"createdAt,omitempty"`
	UpdatedAt            time.Time `json:"updatedAt,omitempty"`
}

// UpsertProfile registers or clears a device's push token. The client calls
// this whenever notification permission changes.
func (h *ProfileHandler) UpsertProfile(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Params("userId"))

	var req upsertProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	profile := domain.UserProfile{
		UserID:               userID,
		PushToken:            normalizeToken(req.PushToken),
		NotificationsEnabled: req.NotificationsEnabled,
	}
	if err := profile.Validate(); err != nil {
		return toHTTPError(err)
	}

	if err := h.profiles.Upsert(c.Context(), &profile); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toProfileResponse(&profile))
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Params("userId"))
	profile, err := h.profiles.GetByUserID(c.Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toProfileResponse(profile))
}

func normalizeToken(token *string) *string {
	if token == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*token)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toProfileResponse(p *domain.UserProfile) profileResponse {
	return profileResponse{
		UserID:               p.UserID,
		PushToken:            p.PushToken,
		NotificationsEnabled: p.NotificationsEnabled,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
