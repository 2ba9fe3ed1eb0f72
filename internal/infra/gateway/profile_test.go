package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchProfile(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Contains(t, r.Header.Values("Accept"), "application/activity+json")
		w.Header().Set("Content-Type", "application/activity+json")
		w.Write([]byte(`{
			"id": "` + "http://" + r.Host + `/users/bob",
			"type": "Person",
			"preferredUsername": "bob",
			"name": "Bob"
		}`))
	}))
	defer server.Close()

	g := NewProfileGateway(5 * time.Second)
	ctx := context.Background()

	profile, err := g.Fetch(ctx, server.URL+"/users/bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.PreferredUsername)
	assert.Equal(t, "Bob", profile.Name)

	// second fetch is served from the cache
	again, err := g.Fetch(ctx, server.URL+"/users/bob")
	require.NoError(t, err)
	assert.Equal(t, profile, again)
	assert.Equal(t, 1, hits)
}

func TestFetchProfileNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	g := NewProfileGateway(5 * time.Second)

	_, err := g.Fetch(context.Background(), server.URL+"/users/bob")
	assert.Error(t, err)
}

func TestFetchProfileMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type": "Person"}`))
	}))
	defer server.Close()

	g := NewProfileGateway(5 * time.Second)

	_, err := g.Fetch(context.Background(), server.URL+"/users/bob")
	assert.Error(t, err)
}

func TestFetchProfileUnparsableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<!doctype html><html></html>`))
	}))
	defer server.Close()

	g := NewProfileGateway(5 * time.Second)

	_, err := g.Fetch(context.Background(), server.URL+"/users/bob")
	assert.Error(t, err)
}
