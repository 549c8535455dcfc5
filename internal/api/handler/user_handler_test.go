package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/acctbase/account-service/internal/api/middleware"
	"github.com/acctbase/account-service/internal/core/domain"
	"github.com/acctbase/account-service/internal/core/ports"
)

type stubUserService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	getFn      func(ctx context.Context, id int64) (*domain.User, error)
	listFn     func(ctx context.Context, actor *domain.User, offset, limit int) ([]domain.User, error)
	updateFn   func(ctx context.Context, id int64, input ports.UpdateUserInput, actor *domain.User) (*domain.User, error)
	deleteFn   func(ctx context.Context, id int64, actor *domain.User) error
}

func (s *stubUserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubUserService) GetProfile(ctx context.Context, id int64) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) List(ctx context.Context, actor *domain.User, offset, limit int) ([]domain.User, error) {
	return s.listFn(ctx, actor, offset, limit)
}

func (s *stubUserService) Update(ctx context.Context, id int64, input ports.UpdateUserInput, actor *domain.User) (*domain.User, error) {
	return s.updateFn(ctx, id, input, actor)
}

func (s *stubUserService) Delete(ctx context.Context, id int64, actor *domain.User) error {
	return s.deleteFn(ctx, id, actor)
}

func sampleUser() *domain.User {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:           7,
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FullName:     "Alice A.",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserHandler_Register_Success(t *testing.T) {
	stub := &stubUserService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			if input.Email != "alice@example.com" || input.Username != "alice" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return sampleUser(), nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/api/users",
		`{"email":"alice@example.com","username":"alice","password":"secret123","full_name":"Alice A."}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "password") || strings.Contains(body, "$2a$") {
		t.Fatalf("response leaks password material: %s", body)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["email"] != "alice@example.com" || resp["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Register_ShortPassword(t *testing.T) {
	stub := &stubUserService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/api/users",
		`{"email":"alice@example.com","username":"alice","password":"short"}`)
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
}

func TestUserHandler_Register_PasswordLengthBound(t *testing.T) {
	called := false
	stub := &stubUserService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			called = true
			if len(input.Password) != 72 {
				t.Fatalf("unexpected password length: %d", len(input.Password))
			}
			return sampleUser(), nil
		},
	}
	h := NewUserHandler(stub)

	// 72 characters is the longest password the hasher accepts; it must
	// pass validation and reach the service.
	body := `{"email":"alice@example.com","username":"alice","password":"` + strings.Repeat("a", 72) + `"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/users", body)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || !called {
		t.Fatalf("expected 201 with service called, got %d (called=%v)", rec.Code, called)
	}

	// One character longer must be rejected before the service runs.
	body = `{"email":"alice@example.com","username":"alice","password":"` + strings.Repeat("a", 73) + `"}`
	c, _ = newTestContext(t, http.MethodPost, "/api/users", body)
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError for 73-char password, got %v", err)
	}
}

func TestUserHandler_Update_PasswordTooLong(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, id int64, input ports.UpdateUserInput, actor *domain.User) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	body := `{"password":"` + strings.Repeat("a", 73) + `"}`
	c, _ := newTestContext(t, http.MethodPatch, "/api/users/7", body)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set(middleware.ActorKey, sampleUser())

	err := h.Update(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
}

func TestUserHandler_Register_Conflict(t *testing.T) {
	stub := &stubUserService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/api/users",
		`{"email":"alice@example.com","username":"alice","password":"secret123"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserHandler_Me(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	c, rec := newTestContext(t, http.MethodGet, "/api/users/me", "")
	c.Set(middleware.ActorKey, sampleUser())

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Me_MissingActor(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	c, _ := newTestContext(t, http.MethodGet, "/api/users/me", "")
	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestUserHandler_Get_Success(t *testing.T) {
	stub := &stubUserService{
		getFn: func(ctx context.Context, id int64) (*domain.User, error) {
			if id != 7 {
				t.Fatalf("unexpected id: %d", id)
			}
			return sampleUser(), nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/api/users/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Get_NonNumericID(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	c, _ := newTestContext(t, http.MethodGet, "/api/users/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	stub := &stubUserService{
		getFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodGet, "/api/users/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := h.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_List_Defaults(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context, actor *domain.User, offset, limit int) ([]domain.User, error) {
			if offset != 0 || limit != 10 {
				t.Fatalf("expected default paging 0/10, got %d/%d", offset, limit)
			}
			return []domain.User{*sampleUser()}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/api/users", "")
	admin := sampleUser()
	admin.IsSuperuser = true
	c.Set(middleware.ActorKey, admin)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0]["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_List_ClampsLimit(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context, actor *domain.User, offset, limit int) ([]domain.User, error) {
			if offset != 5 || limit != 100 {
				t.Fatalf("expected paging 5/100, got %d/%d", offset, limit)
			}
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodGet, "/api/users?offset=5&limit=500", "")
	admin := sampleUser()
	admin.IsSuperuser = true
	c.Set(middleware.ActorKey, admin)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestUserHandler_List_Forbidden(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context, actor *domain.User, offset, limit int) ([]domain.User, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodGet, "/api/users", "")
	c.Set(middleware.ActorKey, sampleUser())

	if err := h.List(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_Update_Success(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, id int64, input ports.UpdateUserInput, actor *domain.User) (*domain.User, error) {
			if id != 7 {
				t.Fatalf("unexpected id: %d", id)
			}
			if input.FullName == nil || *input.FullName != "New Name" {
				t.Fatalf("unexpected input: %+v", input)
			}
			if input.Email != nil || input.Password != nil {
				t.Fatalf("absent fields should stay nil: %+v", input)
			}
			u := sampleUser()
			u.FullName = *input.FullName
			return u, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodPatch, "/api/users/7", `{"full_name":"New Name"}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set(middleware.ActorKey, sampleUser())

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["full_name"] != "New Name" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Update_InvalidEmail(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, id int64, input ports.UpdateUserInput, actor *domain.User) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodPatch, "/api/users/7", `{"email":"nope"}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set(middleware.ActorKey, sampleUser())

	err := h.Update(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
}

func TestUserHandler_Update_Forbidden(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, id int64, input ports.UpdateUserInput, actor *domain.User) (*domain.User, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodPatch, "/api/users/9", `{"full_name":"x"}`)
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set(middleware.ActorKey, sampleUser())

	if err := h.Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_Delete_Success(t *testing.T) {
	deleted := false
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id int64, actor *domain.User) error {
			if id != 7 {
				t.Fatalf("unexpected id: %d", id)
			}
			deleted = true
			return nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodDelete, "/api/users/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	admin := sampleUser()
	admin.IsSuperuser = true
	c.Set(middleware.ActorKey, admin)

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !deleted {
		t.Fatalf("service not called")
	}
}

func TestUserHandler_Delete_NotFound(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id int64, actor *domain.User) error {
			return domain.ErrUserNotFound
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodDelete, "/api/users/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	admin := sampleUser()
	admin.IsSuperuser = true
	c.Set(middleware.ActorKey, admin)

	if err := h.Delete(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
