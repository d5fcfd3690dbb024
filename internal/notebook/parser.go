// Package notebook extracts example execution parameters from the Jupyter
// notebooks published alongside each application package pattern.
package notebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	githubRepo   = "eoap/application-package-patterns"
	githubBranch = "main"
	docsPath     = "docs"

	downloadTimeout = 30 * time.Second
)

var paramsAssignRegex = regexp.MustCompile(`params\s*=\s*\{`)

// Parser downloads pattern notebooks and extracts their 'params' variable
// into local JSON parameter files.
type Parser struct {
	// HTTPClient may be overridden in tests.
	HTTPClient *http.Client
}

func NewParser() *Parser {
	return &Parser{HTTPClient: &http.Client{Timeout: downloadTimeout}}
}

// NotebookURL returns the raw GitHub URL for a pattern's notebook.
func (p *Parser) NotebookURL(patternID string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s.ipynb",
		githubRepo, githubBranch, docsPath, patternID)
}

type notebook struct {
	Cells []struct {
		CellType string          `json:"cell_type"`
		Source   json.RawMessage `json:"source"`
	} `json:"cells"`
}

// DownloadNotebook fetches and decodes a pattern's notebook.
func (p *Parser) DownloadNotebook(ctx context.Context, patternID string) (*notebook, error) {
	url := p.NotebookURL(patternID)
	log.Info().Str("url", url).Msg("Downloading notebook")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("notebook not found for %s", patternID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d downloading notebook for %s", resp.StatusCode, patternID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var nb notebook
	if err := json.Unmarshal(body, &nb); err != nil {
		return nil, fmt.Errorf("invalid notebook JSON for %s: %w", patternID, err)
	}

	log.Info().Str("pattern_id", patternID).Msg("✓ Notebook downloaded")
	return &nb, nil
}

// cellCode joins a cell source, which notebooks store either as a single
// string or as a list of lines.
func cellCode(source json.RawMessage) string {
	var s string
	if err := json.Unmarshal(source, &s); err == nil {
		return s
	}
	var lines []string
	if err := json.Unmarshal(source, &lines); err == nil {
		return strings.Join(lines, "")
	}
	return ""
}

// ExtractParams scans a notebook's code cells for a 'params' dictionary
// definition and returns it decoded.
func (p *Parser) ExtractParams(nb *notebook) (map[string]any, error) {
	for _, cell := range nb.Cells {
		if cell.CellType != "code" {
			continue
		}
		if params := extractParamsFromCode(cellCode(cell.Source)); params != nil {
			log.Info().Msg("✓ Found params in notebook")
			return params, nil
		}
	}
	return nil, fmt.Errorf("no 'params' variable found in notebook")
}

// extractParamsFromCode locates `params = {...}` in Python source using
// string- and escape-aware brace matching, then converts the Python literal
// to JSON and decodes it. Returns nil if no well-formed definition is found.
func extractParamsFromCode(code string) map[string]any {
	loc := paramsAssignRegex.FindStringIndex(code)
	if loc == nil {
		return nil
	}

	// Position of the opening '{'.
	start := loc[1] - 1

	braceCount := 0
	inString := false
	var quoteChar byte
	escapeNext := false
	end := -1

	for i := start; i < len(code); i++ {
		ch := code[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			escapeNext = true
			continue
		}

		if ch == '"' || ch == '\'' {
			if !inString {
				inString = true
				quoteChar = ch
			} else if ch == quoteChar {
				inString = false
			}
			continue
		}

		if !inString {
			switch ch {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					end = i + 1
				}
			}
			if end != -1 {
				break
			}
		}
	}

	if end == -1 {
		log.Error().Msg("Unmatched braces in params definition")
		return nil
	}

	params, err := decodePythonLiteral(code[start:end])
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse params")
		return nil
	}
	return params
}

var (
	trueRegex         = regexp.MustCompile(`:\s*True\b`)
	falseRegex        = regexp.MustCompile(`:\s*False\b`)
	noneRegex         = regexp.MustCompile(`:\s*None\b`)
	trailingComma     = regexp.MustCompile(`,(\s*[}\]])`)
	singleQuotedToken = regexp.MustCompile(`'([^'\\]*(?:\\.[^'\\]*)*)'`)
)

// decodePythonLiteral converts a Python dict literal into JSON and decodes
// it. Single-quoted strings, True/False/None, and trailing commas are the
// only Python-isms the patterns notebooks use.
func decodePythonLiteral(src string) (map[string]any, error) {
	jsonStr := singleQuotedToken.ReplaceAllString(src, `"$1"`)
	jsonStr = trueRegex.ReplaceAllString(jsonStr, ": true")
	jsonStr = falseRegex.ReplaceAllString(jsonStr, ": false")
	jsonStr = noneRegex.ReplaceAllString(jsonStr, ": null")
	jsonStr = trailingComma.ReplaceAllString(jsonStr, "$1")

	var params map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &params); err != nil {
		return nil, err
	}
	return params, nil
}

// SaveParams writes a parameters map to a JSON file, creating parent
// directories as needed.
func (p *Parser) SaveParams(params map[string]any, outputFile string) error {
	if err := os.MkdirAll(filepath.Dir(outputFile), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(params); err != nil {
		return fmt.Errorf("failed to write parameters to %s: %w", outputFile, err)
	}

	log.Info().Str("file", outputFile).Msg("✓ Saved parameters")
	return nil
}

// SyncPattern downloads one pattern's notebook, extracts params, and saves
// them to <outputDir>/<patternID>.json.
func (p *Parser) SyncPattern(ctx context.Context, patternID, outputDir string) error {
	log.Info().Str("pattern_id", patternID).Msg("Syncing parameters")

	nb, err := p.DownloadNotebook(ctx, patternID)
	if err != nil {
		return err
	}

	params, err := p.ExtractParams(nb)
	if err != nil {
		return err
	}

	return p.SaveParams(params, filepath.Join(outputDir, patternID+".json"))
}

// SyncAll syncs parameters for multiple patterns, returning per-pattern
// success. With continueOnError false the first failure stops the loop.
func (p *Parser) SyncAll(ctx context.Context, patternIDs []string, outputDir string, continueOnError bool) map[string]bool {
	results := make(map[string]bool, len(patternIDs))

	for _, patternID := range patternIDs {
		err := p.SyncPattern(ctx, patternID, outputDir)
		results[patternID] = err == nil

		if err != nil {
			log.Error().Err(err).Str("pattern_id", patternID).Msg("Sync failed")
			if !continueOnError {
				break
			}
		}
	}

	succeeded := 0
	for _, ok := range results {
		if ok {
			succeeded++
		}
	}
	log.Info().Msgf("Sync complete: %d/%d patterns updated", succeeded, len(results))
	return results
}
