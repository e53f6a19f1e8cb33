package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const wellFormedID = "64b0c1a2d3e4f5a6b7c8d9e0"

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setupRoutes(r)
	return r
}

func performRequest(r http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// withoutStore forces the unconfigured-store state for the duration of a test.
func withoutStore(t *testing.T) {
	t.Helper()
	prev := db
	db = nil
	t.Cleanup(func() { db = prev })
}

// withStubStore installs a store handle that is never dialed. Handlers
// that reject a request before touching the store can be exercised
// without a running database.
func withStubStore(t *testing.T) {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:27017").
		SetServerSelectionTimeout(50*time.Millisecond))
	require.NoError(t, err)
	prev := db
	db = client.Database("tjournal_test")
	t.Cleanup(func() {
		db = prev
		_ = client.Disconnect(context.Background())
	})
}

func TestRootLiveness(t *testing.T) {
	r := newTestRouter()
	rec := performRequest(r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Trader's Journal API is running", body["message"])
}

func TestDataEndpointsWithoutStoreReturn503(t *testing.T) {
	withoutStore(t)
	r := newTestRouter()

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/entries", `{"date":"2024-01-01","instrument":"ES","session":"NY","outcome":"Win"}`},
		{http.MethodGet, "/api/entries", ""},
		{http.MethodGet, "/api/entries/" + wellFormedID, ""},
		{http.MethodPatch, "/api/entries/" + wellFormedID, `{}`},
		{http.MethodDelete, "/api/entries/" + wellFormedID, ""},
		{http.MethodGet, "/api/tags", ""},
	}
	for _, tc := range cases {
		var body io.Reader
		if tc.body != "" {
			body = strings.NewReader(tc.body)
		}
		rec := performRequest(r, tc.method, tc.path, body)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestMalformedIDReturns400(t *testing.T) {
	withoutStore(t)
	r := newTestRouter()

	for _, tc := range []struct {
		method, path string
		body         io.Reader
	}{
		{http.MethodGet, "/api/entries/xyz", nil},
		{http.MethodPatch, "/api/entries/xyz", strings.NewReader(`{}`)},
		{http.MethodDelete, "/api/entries/xyz", nil},
		{http.MethodGet, "/api/entries/" + wellFormedID + "ff", nil},
	} {
		rec := performRequest(r, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCreateRejectsInvalidPayloads(t *testing.T) {
	withStubStore(t)
	r := newTestRouter()

	cases := []struct {
		name, body string
	}{
		{"missing date", `{"instrument":"ES","session":"NY","outcome":"Win"}`},
		{"missing instrument", `{"date":"2024-01-01","session":"NY","outcome":"Win"}`},
		{"bad session", `{"date":"2024-01-01","instrument":"ES","session":"Tokyo","outcome":"Win"}`},
		{"bad outcome", `{"date":"2024-01-01","instrument":"ES","session":"NY","outcome":"Draw"}`},
		{"not json", `date=2024-01-01`},
	}
	for _, tc := range cases {
		rec := performRequest(r, http.MethodPost, "/api/entries", strings.NewReader(tc.body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.name)
	}
}

func TestUpdateRejectsInvalidEnumValues(t *testing.T) {
	withStubStore(t)
	r := newTestRouter()

	for _, body := range []string{
		`{"session":"Tokyo"}`,
		`{"outcome":"Draw"}`,
	} {
		rec := performRequest(r, http.MethodPatch, "/api/entries/"+wellFormedID, strings.NewReader(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestDiagnosticWithoutStore(t *testing.T) {
	withoutStore(t)
	r := newTestRouter()

	rec := performRequest(r, http.MethodGet, "/test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "running", body["backend"])
	assert.Equal(t, "not available", body["database"])
	assert.Equal(t, "not connected", body["connection_status"])
}
