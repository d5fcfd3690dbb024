package pattern

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cwlFixture = "cwlVersion: v1.0\nclass: Workflow\n"

func TestEnsureDownloadsWhenAbsent(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(cwlFixture))
	}))
	t.Cleanup(srv.Close)

	c := &Cache{Dir: t.TempDir()}
	path, err := c.Ensure(context.Background(), "pattern-1", srv.URL+"/pattern-1.cwl", false)

	require.NoError(t, err)
	assert.Equal(t, 1, fetches)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cwlFixture, string(content))
}

func TestEnsureSkipsWhenCached(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(cwlFixture))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pattern-1.cwl"), []byte(cwlFixture), 0644))

	c := &Cache{Dir: dir}
	path, err := c.Ensure(context.Background(), "pattern-1", srv.URL+"/pattern-1.cwl", false)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pattern-1.cwl"), path)
	assert.Zero(t, fetches, "cached artifact must not be re-fetched")
}

func TestEnsureForceRedownloads(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte("updated: true\n"))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pattern-1.cwl"), []byte("stale"), 0644))

	c := &Cache{Dir: dir}
	path, err := c.Ensure(context.Background(), "pattern-1", srv.URL+"/pattern-1.cwl", true)

	require.NoError(t, err)
	assert.Equal(t, 1, fetches)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated: true\n", string(content))
}

func TestEnsureHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	c := &Cache{Dir: dir}
	_, err := c.Ensure(context.Background(), "pattern-99", srv.URL+"/pattern-99.cwl", false)

	assert.ErrorContains(t, err, "failed to download CWL for pattern-99")
	_, statErr := os.Stat(filepath.Join(dir, "pattern-99.cwl"))
	assert.True(t, os.IsNotExist(statErr), "no artifact is written on failure")
}

func TestEnsureCreatesCacheDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cwlFixture))
	}))
	t.Cleanup(srv.Close)

	dir := filepath.Join(t.TempDir(), "nested", "cwl")
	c := &Cache{Dir: dir}
	path, err := c.Ensure(context.Background(), "pattern-1", srv.URL+"/pattern-1.cwl", false)

	require.NoError(t, err)
	assert.FileExists(t, path)
}
