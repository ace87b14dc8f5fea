package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/roadshare/carpool-backend/internal/middleware"
	"github.com/roadshare/carpool-backend/internal/utils"
)

const testSecret = "test-secret"

func newTestServer() *echo.Echo {
	e := echo.New()
	g := e.Group("", middleware.JWTAuth(testSecret))
	g.GET("/whoami", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": middleware.CallerID(c),
			"email":   c.Get(middleware.ContextEmail),
		})
	})
	return e
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "noa@example.com", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{`"user_id":42`, `"email":"noa@example.com"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}

func TestJWTAuth_Rejections(t *testing.T) {
	valid, err := utils.NewAccessToken(testSecret, 42, "noa@example.com", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	foreign, err := utils.NewAccessToken("other-secret", 42, "noa@example.com", 15)
	if err != nil {
		t.Fatalf("issue foreign token: %v", err)
	}
	expired := signedToken(t, jwt.MapClaims{
		"sub":   float64(42),
		"email": "noa@example.com",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	})
	noSubject := signedToken(t, jwt.MapClaims{
		"email": "noa@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token " + valid.Token},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + foreign.Token},
		{"expired", "Bearer " + expired},
		{"no subject", "Bearer " + noSubject},
	}
	e := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status %d, want 401", w.Code)
			}
		})
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}
