package notebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractParamsFromCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want map[string]any
	}{
		{
			name: "Simple dict",
			code: `params = {"input": "value"}`,
			want: map[string]any{"input": "value"},
		},
		{
			name: "Single quotes",
			code: `params = {'stac_item': 'https://example.com/item.json'}`,
			want: map[string]any{"stac_item": "https://example.com/item.json"},
		},
		{
			name: "Nested braces",
			code: `params = {"item": {"href": "s3://bucket/key", "bands": ["green", "nir"]}}`,
			want: map[string]any{"item": map[string]any{"href": "s3://bucket/key", "bands": []any{"green", "nir"}}},
		},
		{
			name: "Python literals",
			code: `params = {"flag": True, "skip": False, "extra": None}`,
			want: map[string]any{"flag": true, "skip": false, "extra": nil},
		},
		{
			name: "Trailing comma",
			code: "params = {\n    \"input\": \"value\",\n}",
			want: map[string]any{"input": "value"},
		},
		{
			name: "Braces inside strings",
			code: `params = {"template": "item-{id}"}`,
			want: map[string]any{"template": "item-{id}"},
		},
		{
			name: "Surrounding code",
			code: "import json\nparams = {\"a\": 1}\nresult = execute(params)",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "No params variable",
			code: `other = {"a": 1}`,
			want: nil,
		},
		{
			name: "Unmatched braces",
			code: `params = {"a": 1`,
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractParamsFromCode(tc.code))
		})
	}
}

func notebookFixture(code any) []byte {
	nb := map[string]any{
		"cells": []map[string]any{
			{"cell_type": "markdown", "source": "# Pattern example"},
			{"cell_type": "code", "source": code},
		},
	}
	raw, _ := json.Marshal(nb)
	return raw
}

func TestSyncPattern(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/docs/pattern-1.ipynb", r.URL.Path)
		// Notebook cells commonly store source as a list of lines.
		w.Write(notebookFixture([]string{
			"params = {\n",
			"    'input': 'https://example.com/item.json',\n",
			"    'bands': ['green', 'nir'],\n",
			"}\n",
		}))
	}))
	t.Cleanup(srv.Close)

	outputDir := t.TempDir()
	p := &Parser{HTTPClient: &http.Client{Transport: rewriteHost(srv.URL)}}

	err := p.SyncPattern(context.Background(), "pattern-1", outputDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outputDir, "pattern-1.json"))
	require.NoError(t, err)

	var params map[string]any
	require.NoError(t, json.Unmarshal(data, &params))
	assert.Equal(t, "https://example.com/item.json", params["input"])
	assert.Equal(t, []any{"green", "nir"}, params["bands"])
}

func TestSyncPatternNotebookMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	p := &Parser{HTTPClient: &http.Client{Transport: rewriteHost(srv.URL)}}

	err := p.SyncPattern(context.Background(), "pattern-99", t.TempDir())
	assert.ErrorContains(t, err, "notebook not found")
}

func TestSyncPatternNoParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(notebookFixture("print('no params here')"))
	}))
	t.Cleanup(srv.Close)

	p := &Parser{HTTPClient: &http.Client{Transport: rewriteHost(srv.URL)}}

	err := p.SyncPattern(context.Background(), "pattern-1", t.TempDir())
	assert.ErrorContains(t, err, "no 'params' variable found")
}

func TestSyncAllContinueOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/docs/pattern-2.ipynb" {
			http.NotFound(w, r)
			return
		}
		w.Write(notebookFixture(`params = {"input": "value"}`))
	}))
	t.Cleanup(srv.Close)

	p := &Parser{HTTPClient: &http.Client{Transport: rewriteHost(srv.URL)}}
	outputDir := t.TempDir()

	results := p.SyncAll(context.Background(), []string{"pattern-1", "pattern-2", "pattern-3"}, outputDir, true)

	assert.Equal(t, map[string]bool{"pattern-1": true, "pattern-2": false, "pattern-3": true}, results)
	assert.FileExists(t, filepath.Join(outputDir, "pattern-3.json"))
}

func TestSyncAllStopsOnFirstFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	p := &Parser{HTTPClient: &http.Client{Transport: rewriteHost(srv.URL)}}

	results := p.SyncAll(context.Background(), []string{"pattern-1", "pattern-2"}, t.TempDir(), false)

	assert.Equal(t, map[string]bool{"pattern-1": false}, results, "pattern-2 is never attempted")
}

// rewriteHost redirects every request to the test server, keeping the path.
type rewriteHost string

func (h rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	target := string(h) + req.URL.Path
	redirected, err := http.NewRequestWithContext(req.Context(), req.Method, target, req.Body)
	if err != nil {
		return nil, err
	}
	redirected.Header = req.Header
	return http.DefaultTransport.RoundTrip(redirected)
}
