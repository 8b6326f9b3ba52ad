package jwtmw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/usecase"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubValidator はValidateSessionの結果を固定で返します。
type stubValidator struct {
	user  *entity.User
	err   error
	calls int
	gotID string
}

func (s *stubValidator) ValidateSession(ctx context.Context, userID, tokenID string) (*entity.User, error) {
	s.calls++
	s.gotID = tokenID
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func serveWithAuth(t *testing.T, m *Manager, v SessionValidator, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	r := gin.New()
	r.GET("/me", AuthRequired(m, v), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, reached
}

// TestAuthRequired_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に401が返されることを検証します。
func TestAuthRequired_MissingBearerToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	v := &stubValidator{user: &entity.User{ID: "user-1"}}

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, reached := serveWithAuth(t, m, v, tt.authHeader)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if reached {
				t.Error("handler must not run")
			}
		})
	}
	if v.calls != 0 {
		t.Errorf("validator should not be called, got %d calls", v.calls)
	}
}

// TestAuthRequired_InvalidToken は不正なトークン（改ざん・期限切れ等）で401が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	v := &stubValidator{user: &entity.User{ID: "user-1"}}

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"random string", "randomstring"},
		{"wrong secret", signRegistered("wrong-secret", "user-1", "jti", time.Hour)},
		{"expired token", signRegistered("test-secret", "user-1", "jti", -time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, reached := serveWithAuth(t, m, v, "Bearer "+tt.token)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if reached {
				t.Error("handler must not run")
			}
		})
	}
}

// TestAuthRequired_SessionValidationErrors は署名が正しいトークンでもセッション検証に失敗した場合のステータスを検証します。
// ユーザーやセッションが存在しない場合は401、ストア障害は500になります。
func TestAuthRequired_SessionValidationErrors(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, _, _, err := m.GenerateToken("user-1")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"revoked session", usecase.ErrSessionNotFound, http.StatusUnauthorized, "please authenticate"},
		{"deleted user", usecase.ErrUserNotFound, http.StatusUnauthorized, "please authenticate"},
		{"wrapped session not found", fmt.Errorf("lookup: %w", usecase.ErrSessionNotFound), http.StatusUnauthorized, "please authenticate"},
		{"session store down", errors.New("dial tcp 127.0.0.1:6379: connection refused"), http.StatusInternalServerError, "internal server error"},
		{"user store timeout", context.DeadlineExceeded, http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &stubValidator{err: tt.err}

			w, reached := serveWithAuth(t, m, v, "Bearer "+token)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if reached {
				t.Error("handler must not run")
			}

			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["success"] != false || body["message"] != tt.wantMessage || body["code"] != float64(tt.wantStatus) {
				t.Errorf("unexpected error envelope: %v", body)
			}
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンでリクエストが通過し、コンテキストにユーザーが設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	user := &entity.User{ID: "user-1", Email: "a@example.com"}
	v := &stubValidator{user: user}
	token, tokenID, _, err := m.GenerateToken("user-1")
	if err != nil {
		t.Fatal(err)
	}

	var gotUser *entity.User
	var gotTokenID, gotUserID string
	r := gin.New()
	r.GET("/me", AuthRequired(m, v), func(c *gin.Context) {
		gotUser, _ = CurrentUser(c)
		gotTokenID = CurrentTokenID(c)
		gotUserID = CurrentUserID(c)
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNoContent, w.Code, w.Body.String())
	}
	if gotUser != user {
		t.Error("expected current user to be set")
	}
	if gotTokenID != tokenID || v.gotID != tokenID {
		t.Errorf("expected token id %q, got %q", tokenID, gotTokenID)
	}
	if gotUserID != "user-1" {
		t.Errorf("expected user id %q, got %q", "user-1", gotUserID)
	}
}

// TestCurrentUser_NotSet は認証前のコンテキストでユーザーが取得できないことを検証します。
func TestCurrentUser_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := CurrentUser(c); ok {
		t.Error("expected no current user")
	}
	if CurrentTokenID(c) != "" {
		t.Error("expected empty token id")
	}
	if CurrentUserID(c) != "" {
		t.Error("expected empty user id")
	}
}
