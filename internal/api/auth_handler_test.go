package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates user and returns token", func(t *testing.T) {
		t.Parallel()

		router := newAPIFixture(nil).newTestRouter()
		w := postJSON(t, router, "/api/auth/register",
			`{"email":"reviewer@example.com","password":"a long enough password"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "token-for-"+resp.UserID.String(), resp.Token)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()

		router := newAPIFixture(nil).newTestRouter()
		body := `{"email":"dup@example.com","password":"a long enough password"}`
		require.Equal(t, http.StatusCreated, postJSON(t, router, "/api/auth/register", body).Code)
		assert.Equal(t, http.StatusConflict, postJSON(t, router, "/api/auth/register", body).Code)
	})

	t.Run("short password fails validation", func(t *testing.T) {
		t.Parallel()

		router := newAPIFixture(nil).newTestRouter()
		w := postJSON(t, router, "/api/auth/register",
			`{"email":"reviewer@example.com","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		router := newAPIFixture(nil).newTestRouter()
		w := postJSON(t, router, "/api/auth/register", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	register := func(t *testing.T, router http.Handler) {
		t.Helper()
		w := postJSON(t, router, "/api/auth/register",
			`{"email":"reviewer@example.com","password":"a long enough password"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		router := newAPIFixture(nil).newTestRouter()
		register(t, router)

		w := postJSON(t, router, "/api/auth/login",
			`{"email":"reviewer@example.com","password":"a long enough password"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password and unknown email respond identically", func(t *testing.T) {
		t.Parallel()

		router := newAPIFixture(nil).newTestRouter()
		register(t, router)

		wrongPass := postJSON(t, router, "/api/auth/login",
			`{"email":"reviewer@example.com","password":"not the password"}`)
		unknown := postJSON(t, router, "/api/auth/login",
			`{"email":"nobody@example.com","password":"a long enough password"}`)

		assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrongPass.Body.String(), unknown.Body.String())
	})
}
