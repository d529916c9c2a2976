package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientregistry/internal/registry/directory"
	"clientregistry/internal/registry/handler"
	"clientregistry/internal/registry/models"
	"clientregistry/internal/registry/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	dir := directory.New(store.NewInMemory(), directory.WithLogger(logger))

	r := chi.NewRouter()
	handler.New(dir, logger).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func draftBody(name, email, cnpj string) models.Draft {
	return models.Draft{
		Name:      name,
		Email:     email,
		Telephone: "11987654321",
		CNPJ:      cnpj,
		Address:   "Avenida Paulista, 1000",
	}
}

func TestCreateValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/clients/", models.Draft{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var envelope struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "validation", envelope.Error)
	assert.Len(t, envelope.Fields, 5)
	assert.Equal(t, "email is required", envelope.Fields["email"])
}

func TestClientLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/clients/", draftBody("Acme Corp", "a@acme.com", "11111111111111"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Client
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, models.ClientID(1), created.ID)
	assert.Equal(t, "Acme Corp", created.Name)

	resp, raw = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/clients/%d", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Client
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, created, fetched)

	update := models.DraftOf(created)
	update.City = "São Paulo"
	resp, raw = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/clients/%d", srv.URL, created.ID), update)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Client
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, "São Paulo", updated.City)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/clients/%d", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/clients/%d", srv.URL, created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListEmptyIsArray(t *testing.T) {
	srv := newTestServer(t)

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/clients/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
}

func TestListSearch(t *testing.T) {
	srv := newTestServer(t)

	for _, d := range []models.Draft{
		draftBody("Acme Corp", "a@acme.com", "11111111111111"),
		draftBody("Beta Ltda", "b@beta.com", "22222222222222"),
	} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/clients/", d)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/clients/?search=ACME", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var records []models.Client
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Corp", records[0].Name)
}

func TestCreateConflict(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/clients/", draftBody("Acme", "a@acme.com", "11111111111111"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/clients/", draftBody("Other", "a@acme.com", "22222222222222"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var envelope struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "conflict", envelope.Error)
}

func TestDeleteUnknownID(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/clients/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMalformedIDAndBody(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/clients/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/clients/", strings.NewReader("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
