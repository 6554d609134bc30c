package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gogitters/apcimap/api"
)

func TestServeSpec(t *testing.T) {
	w := httptest.NewRecorder()
	ServeSpec(api.OpenAPI)(w, httptest.NewRequest(http.MethodGet, "/docs/openapi.yaml", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))

	var doc struct {
		Paths map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &doc))
	for _, path := range []string{"/user", "/star", "/property", "/sign-up", "/sign-in", "/sign-out", "/activation"} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestServeDocs(t *testing.T) {
	w := httptest.NewRecorder()
	ServeDocs("/docs/openapi.yaml")(w, httptest.NewRequest(http.MethodGet, "/docs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `url: "/docs/openapi.yaml"`)
}
