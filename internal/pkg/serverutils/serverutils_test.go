package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"ai-shopassist-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchInput struct {
	Query  string `validate:"required"`
	Limit  int    `validate:"min=0,max=50"`
	Intent string `validate:"omitempty,oneof=general product_search"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&searchInput{Query: "wallet", Limit: 5}))

	err := ValidateRequest(&searchInput{Limit: 99, Intent: "shopping"})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "is required", validationErr.Fields["query"])
	assert.Equal(t, "must be at most 50", validationErr.Fields["limit"])
	assert.Contains(t, validationErr.Fields["intent"], "must be one of")
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAdminMiddleware(t *testing.T) {
	const secret = "test-secret"
	app := fiber.New()
	app.Get("/admin", AdminMiddleware(secret), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	})
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", want: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: fiber.StatusUnauthorized},
		{name: "bad signature", header: "Bearer " + signed(t, "other", jwt.MapClaims{"role": "admin", "exp": exp}), want: fiber.StatusUnauthorized},
		{name: "not admin", header: "Bearer " + signed(t, secret, jwt.MapClaims{"role": "user", "exp": exp}), want: fiber.StatusForbidden},
		{name: "admin", header: "Bearer " + signed(t, secret, jwt.MapClaims{"role": "admin", "user_id": "u1", "exp": exp}), want: fiber.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAdminMiddleware_NoSecretRejects(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", AdminMiddleware(""), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "anything", jwt.MapClaims{"role": "admin"}))
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/validation", func(ctx *fiber.Ctx) error {
		return &ValidationError{Fields: map[string]string{"url": "is required"}}
	})
	app.Get("/missing", func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "job not found")
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return errors.New("database exploded")
	})

	tests := []struct {
		path    string
		code    int
		message string
	}{
		{"/validation", fiber.StatusBadRequest, "Validation failed"},
		{"/missing", fiber.StatusNotFound, "job not found"},
		{"/boom", fiber.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			var body Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
