package pattern

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const fetchTimeout = 30 * time.Second

// Cache keeps downloaded CWL workflow files under a local directory.
// Policy: skip the fetch if the artifact already exists and force is false.
type Cache struct {
	Dir string

	// HTTPClient may be overridden in tests. Nil means a default client
	// with the fetch timeout applied.
	HTTPClient *http.Client
}

// Ensure guarantees a local copy of the workflow artifact for a pattern,
// downloading it from url only if absent or force is set. It returns the
// local path.
func (c *Cache) Ensure(ctx context.Context, patternID, url string, force bool) (string, error) {
	cwlPath := filepath.Join(c.Dir, patternID+".cwl")

	if !force {
		if _, err := os.Stat(cwlPath); err == nil {
			log.Debug().Str("pattern_id", patternID).Msg("CWL artifact already cached")
			return cwlPath, nil
		}
	}

	log.Info().Str("pattern_id", patternID).Str("url", url).Msg("Downloading CWL workflow")

	if err := c.download(ctx, url, cwlPath); err != nil {
		return "", fmt.Errorf("failed to download CWL for %s: %w", patternID, err)
	}

	log.Info().Str("pattern_id", patternID).Msg("✓ CWL workflow downloaded")
	return cwlPath, nil
}

func (c *Cache) download(ctx context.Context, url, dest string) error {
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		// Don't leave a truncated artifact behind to satisfy the next
		// cache check.
		os.Remove(dest)
		return err
	}
	return nil
}
