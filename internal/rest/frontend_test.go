package rest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontendHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))
	handler := NewFrontendHandler(dir, "index.html")

	serve := func(target string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", target, nil))
		return rr
	}

	t.Run("should serve static files", func(t *testing.T) {
		rr := serve("/assets/app.js")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "console.log(1)", rr.Body.String())
	})

	t.Run("should fall back to the index for client routes", func(t *testing.T) {
		rr := serve("/month/2024/12")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "<html>app</html>", rr.Body.String())
	})

	t.Run("should not shadow unknown api routes", func(t *testing.T) {
		rr := serve("/api/unknown")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(rr, http.StatusBadRequest, ErrorResponse{Error: "Invalid event", Fields: map[string]string{"name": "name is required"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Invalid event","fields":{"name":"name is required"}}`, rr.Body.String())
}
