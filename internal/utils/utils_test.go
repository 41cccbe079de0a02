package utils_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/kasira/internal/utils"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := utils.GenerateToken("secret", userID, time.Hour)
	require.NoError(t, err)

	parsed, err := utils.ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := utils.GenerateToken("secret", uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = utils.ParseToken("other", token)
	assert.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	token, err := utils.GenerateToken("secret", uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = utils.ParseToken("secret", token)
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  utils.Pagination
	}{
		{"defaults", "", utils.Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"explicit", "?page=3&limit=10", utils.Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"capped limit", "?limit=500", utils.Pagination{Page: 1, Limit: 100, Offset: 0}},
		{"garbage falls back", "?page=x&limit=-1", utils.Pagination{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var got utils.Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = utils.ParsePagination(c)
				return nil
			})

			_, err := app.Test(httptest.NewRequest("GET", "/"+tc.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
