package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/amelio/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken(domain.User{ID: 7, Role: domain.RoleTutor, Name: "Tom Tutor"})
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, domain.RoleTutor, claims.Role)
	assert.Equal(t, "7", claims.Subject)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("geheim")
	require.NoError(t, err)
	assert.NotEqual(t, "geheim", hash)
	assert.NoError(t, h.Compare(hash, "geheim"))
	assert.Error(t, h.Compare(hash, "falsch"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     domain.Role
		required domain.Role
		want     int
	}{
		{"admin passes tutor gate", domain.RoleAdmin, domain.RoleTutor, http.StatusOK},
		{"author passes tutor gate", domain.RoleAuthor, domain.RoleTutor, http.StatusOK},
		{"tutor passes tutor gate", domain.RoleTutor, domain.RoleTutor, http.StatusOK},
		{"student fails tutor gate", domain.RoleStudent, domain.RoleTutor, http.StatusForbidden},
		{"student passes student gate", domain.RoleStudent, domain.RoleStudent, http.StatusOK},
		{"tutor fails admin gate", domain.RoleTutor, domain.RoleAdmin, http.StatusForbidden},
		{"anonymous", "", domain.RoleStudent, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				if tt.role != "" {
					c.Locals(principalKey, &Principal{UserID: 1, Role: tt.role})
				}
				return c.Next()
			}, RequireRole(tt.required), func(c *fiber.Ctx) error {
				return c.SendStatus(http.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
