package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUploadSendsMultipartFile verifies the wire shape of an upload
func TestUploadSendsMultipartFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "store.xml", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "<featureModel/>", string(content))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"sessionId":"abc","features":[{"name":"Store","mandatory":true}],"logicRules":["Store"],"mwps":[["Store"]],"constraints":[]}`)
	}))
	defer ts.Close()

	session, err := New(ts.URL).Upload(context.Background(), "store.xml", []byte("<featureModel/>"))
	require.NoError(t, err)
	assert.Equal(t, "abc", session.ID)
	require.Len(t, session.Features, 1)
	assert.Equal(t, "Store", session.Features[0].Name)
	require.Len(t, session.MWPs, 1)
}

// TestUploadSurfacesServiceError verifies the structured error body is preferred
func TestUploadSurfacesServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"only XML files are supported"}`)
	}))
	defer ts.Close()

	_, err := New(ts.URL).Upload(context.Background(), "store.txt", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only XML files are supported")
}

// TestUploadFallsBackToStatus verifies non-JSON error bodies degrade to the status line
func TestUploadFallsBackToStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := New(ts.URL).Upload(context.Background(), "store.xml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

// TestValidateRoundTrip verifies the selection payload and verdict decoding
func TestValidateRoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/validate", r.URL.Path)

		var req struct {
			SelectedFeatures []string `json:"selectedFeatures"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"Store", "Catalog"}, req.SelectedFeatures)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"isValid":false,"messages":["Missing mandatory feature: Search"]}`)
	}))
	defer ts.Close()

	result, err := New(ts.URL).Validate(context.Background(), []string{"Store", "Catalog"})
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"Missing mandatory feature: Search"}, result.Messages)
}

// TestValidateNilSelection verifies nil encodes as an empty list, not null
func TestValidateNilSelection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"selectedFeatures":[]}`, string(body))
		io.WriteString(w, `{"isValid":true,"messages":[]}`)
	}))
	defer ts.Close()

	result, err := New(ts.URL).Validate(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

// TestContextCancellation verifies an expired context aborts the request
func TestContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(ts.URL).Validate(ctx, []string{"Store"})
	require.Error(t, err)
}

// TestHealthy verifies both health outcomes
func TestHealthy(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/healthz", r.URL.Path)
		io.WriteString(w, `{"status":"ok"}`)
	}))
	defer up.Close()
	assert.NoError(t, New(up.URL).Healthy(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.Error(t, New(down.URL).Healthy(context.Background()))
}

// TestBaseURLTrimsSlash verifies trailing slashes do not double up in paths
func TestBaseURLTrimsSlash(t *testing.T) {
	c := New("http://localhost:5000/")
	assert.Equal(t, "http://localhost:5000", c.BaseURL())
}
