package admin

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/anamboary/anamboary/internal/identity"
	"github.com/anamboary/anamboary/internal/middleware"
	"github.com/anamboary/anamboary/internal/session"
)

func setupAdminApp(t *testing.T) (*fiber.App, *identity.Service) {
	t.Helper()
	ids := identity.NewService(identity.NewMemoryRepository())
	sessions := session.NewMemoryStore(30 * time.Minute)
	h := NewHandler("admin", "sup3rsecret", ids, sessions)

	app := fiber.New()
	app.Post("/admin/login", h.Login)
	app.Get("/admin/dashboard", middleware.SessionAuth(sessions, session.RoleAdmin), h.Dashboard)
	return app, ids
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	app, _ := setupAdminApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/admin/login",
		strings.NewReader(`{"username":"admin","password":"wrong"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminDashboardListsUsersAndLogins(t *testing.T) {
	app, ids := setupAdminApp(t)
	ctx := context.Background()

	user, err := ids.Register(ctx, identity.RegisterInput{
		FullName: "Hery Rakoto",
		Phone:    "0341234567",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := ids.Authenticate(ctx, user.Phone, "s3cret", "203.0.113.9"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	// Obtain an admin session.
	loginReq := httptest.NewRequest(fiber.MethodPost, "/admin/login",
		strings.NewReader(`{"username":"admin","password":"sup3rsecret"}`))
	loginReq.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	loginResp, err := app.Test(loginReq)
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if loginResp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from admin login, got %d", loginResp.StatusCode)
	}
	var loginBody struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginBody); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	loginResp.Body.Close()

	req := httptest.NewRequest(fiber.MethodGet, "/admin/dashboard", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+loginBody.Token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Users  []map[string]any `json:"users"`
		Logins []map[string]any `json:"logins"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	resp.Body.Close()

	if len(body.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(body.Users))
	}
	if len(body.Logins) != 1 {
		t.Fatalf("expected 1 login event, got %d", len(body.Logins))
	}
	if body.Logins[0]["remote_addr"] != "203.0.113.9" {
		t.Fatalf("unexpected login event: %+v", body.Logins[0])
	}
}

func TestAdminDashboardRequiresAdminSession(t *testing.T) {
	app, _ := setupAdminApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin/dashboard", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
