package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokensRoundTrip(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)

	tok, exp, err := tokens.Issue("session-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	id, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestSessionTokensRejectForeignAndExpired(t *testing.T) {
	tok, _, err := NewSessionTokens("other", time.Hour).Issue("s")
	require.NoError(t, err)
	_, err = NewSessionTokens("secret", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	expired, _, err := NewSessionTokens("secret", -time.Minute).Issue("s")
	require.NoError(t, err)
	_, err = NewSessionTokens("secret", time.Hour).Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

type codedErr struct{}

func (codedErr) Error() string   { return "session not found" }
func (codedErr) StatusCode() int { return http.StatusNotFound }

type validated struct {
	Content string `validate:"required"`
}

func newApp(tokens *SessionTokens) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: WriteError})
	app.Use(ErrorHandlerMiddleware())
	app.Get("/coded", func(c *fiber.Ctx) error { return codedErr{} })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(http.StatusTeapot, "teapot") })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/invalid", func(c *fiber.Ctx) error { return ValidateRequest(validated{}) })
	app.Get("/secure", SessionMiddleware(tokens), func(c *fiber.Ctx) error {
		return c.JSON(SuccessResponse("ok", SessionID(c)))
	})
	return app
}

func decode(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := newApp(NewSessionTokens("secret", time.Hour))

	cases := []struct {
		path    string
		code    int
		message string
	}{
		{"/coded", http.StatusNotFound, "session not found"},
		{"/fiber", http.StatusTeapot, "teapot"},
		{"/plain", http.StatusInternalServerError, "Internal server error"},
		{"/invalid", http.StatusBadRequest, "Validation failed"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			res, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.code, res.StatusCode)
			body := decode(t, res)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.message, body["message"])
		})
	}
}

func TestSessionMiddleware(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)
	app := newApp(tokens)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/secure", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	tok, _, err := tokens.Issue("abc")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "abc", decode(t, res)["data"])

	res, err = app.Test(httptest.NewRequest(http.MethodGet, "/secure?token="+tok, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
