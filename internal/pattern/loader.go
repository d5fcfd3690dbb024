// Package pattern resolves local pattern definitions and keeps their CWL
// workflow artifacts cached on disk.
package pattern

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/models"
)

// Workflows are published per pattern in the eoap/application-package-patterns
// repository.
const cwlURLTemplate = "https://raw.githubusercontent.com/eoap/application-package-patterns/main/cwl-workflow/%s.cwl"

// CWLURL returns the upstream location of a pattern's workflow file.
func CWLURL(patternID string) string {
	return fmt.Sprintf(cwlURLTemplate, patternID)
}

// Definition is a resolved pattern: where its CWL workflow lives and the
// example parameters to execute it with. Immutable once loaded for a run.
type Definition struct {
	PatternID  string
	CWLURL     string
	Parameters map[string]any
	Type       models.PatternType
}

// Loader reads pattern parameter files from a local directory.
// Each pattern-<n>.json file holds the execution inputs for that pattern.
type Loader struct {
	Dir string
}

// Load resolves the definition for a pattern identifier, or an error if the
// parameter file is missing or malformed.
func (l *Loader) Load(patternID string) (*Definition, error) {
	configFile := filepath.Join(l.Dir, patternID+".json")

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("parameter file not found for %s: %w", patternID, err)
	}

	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse parameter file %s: %w", configFile, err)
	}

	return &Definition{
		PatternID:  patternID,
		CWLURL:     CWLURL(patternID),
		Parameters: params,
		Type:       models.PatternTypeOf(patternID),
	}, nil
}

// List returns the pattern identifiers that have parameter files in the
// loader directory, sorted numerically (pattern-2 before pattern-10).
func (l *Loader) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.Dir, "pattern-*.json"))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), ".json"))
	}

	sort.Slice(ids, func(i, j int) bool {
		return patternNumber(ids[i]) < patternNumber(ids[j])
	})
	return ids, nil
}

func patternNumber(patternID string) int {
	_, numStr, ok := strings.Cut(patternID, "-")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0
	}
	return n
}
