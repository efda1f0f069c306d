package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rizkyhp/medremind/internal/domain"
	"github.com/rizkyhp/medremind/internal/transport"
	"go.uber.org/zap"
)

type stubProfileRepo struct {
	upsertFn func(ctx context.Context, p *domain.UserProfile) error
	getFn    func(ctx context.Context, userID string) (*domain.UserProfile, error)
}

func (s *stubProfileRepo) Upsert(ctx context.Context, p *domain.UserProfile) error {
	if s.upsertFn != nil {
		return s.upsertFn(ctx, p)
	}
	return nil
}

func (s *stubProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if s.getFn != nil {
		return s.getFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func newProfileTestApp(t *testing.T, repo *stubProfileRepo) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})

	if err := RegisterProfileRoutes(app, repo); err != nil {
		t.Fatalf("RegisterProfileRoutes() error = %v", err)
	}

	return app
}

func TestProfileIntegration_UpsertProfile(t *testing.T) {
	t.Parallel()

	var stored *domain.UserProfile
	repo := &stubProfileRepo{
		upsertFn: func(_ context.Context, p *domain.UserProfile) error {
			stored = p
			return nil
		},
	}

	app := newProfileTestApp(t, repo)

	body := `{"pushToken":"  ExponentPushToken[abc]  ","notificationsEnabled":true}`
	resp, respBody := performRequest(t, app, http.MethodPut, "/v1/profiles/user-1", body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(respBody))
	}

	if stored == nil {
		t.Fatal("profile was not stored")
	}
	if stored.UserID != "user-1" {
		t.Fatalf("UserID = %q, want user-1", stored.UserID)
	}
	if stored.PushToken == nil || *stored.PushToken != "ExponentPushToken[abc]" {
		t.Fatalf("PushToken = %v, want trimmed token", stored.PushToken)
	}
}

func TestProfileIntegration_UpsertClearsBlankToken(t *testing.T) {
	t.Parallel()

	var stored *domain.UserProfile
	repo := &stubProfileRepo{
		upsertFn: func(_ context.Context, p *domain.UserProfile) error {
			stored = p
			return nil
		},
	}

	app := newProfileTestApp(t, repo)

	resp, _ := performRequest(t, app, http.MethodPut, "/v1/profiles/user-1", `{"pushToken":"   ","notificationsEnabled":true}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if stored == nil || stored.PushToken != nil {
		t.Fatal("blank token should be stored as nil")
	}
}

func TestProfileIntegration_GetProfile(t *testing.T) {
	t.Parallel()

	token := "ExponentPushToken[abc]"
	repo := &stubProfileRepo{
		getFn: func(_ context.Context, userID string) (*domain.UserProfile, error) {
			if userID != "user-1" {
				return nil, domain.ErrNotFound
			}
			return &domain.UserProfile{
				UserID:               "user-1",
				PushToken:            &token,
				NotificationsEnabled: true,
			}, nil
		},
	}

	app := newProfileTestApp(t, repo)

	resp, body := performRequest(t, app, http.MethodGet, "/v1/profiles/user-1", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, string(body))
	}

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if got["pushToken"] != token {
		t.Fatalf("pushToken = %v, want %q", got["pushToken"], token)
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/v1/profiles/user-missing", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404 for missing profile", resp.StatusCode)
	}
}
