package pattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/models"
)

func writeParamFile(t *testing.T, dir, patternID, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, patternID+".json"), []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeParamFile(t, dir, "pattern-4", `{"stac_items": ["a", "b"], "bands": ["green", "nir"]}`)

	l := &Loader{Dir: dir}
	def, err := l.Load("pattern-4")

	require.NoError(t, err)
	assert.Equal(t, "pattern-4", def.PatternID)
	assert.Equal(t, "https://raw.githubusercontent.com/eoap/application-package-patterns/main/cwl-workflow/pattern-4.cwl", def.CWLURL)
	assert.Equal(t, []any{"a", "b"}, def.Parameters["stac_items"])
	assert.Equal(t, models.TypeScatterGather, def.Type)
}

func TestLoadMissingFile(t *testing.T) {
	l := &Loader{Dir: t.TempDir()}

	_, err := l.Load("pattern-1")

	assert.ErrorContains(t, err, "parameter file not found for pattern-1")
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeParamFile(t, dir, "pattern-1", `{"input": `)

	l := &Loader{Dir: dir}
	_, err := l.Load("pattern-1")

	assert.ErrorContains(t, err, "failed to parse parameter file")
}

func TestListSortsNumerically(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"pattern-10", "pattern-2", "pattern-1"} {
		writeParamFile(t, dir, id, `{}`)
	}

	l := &Loader{Dir: dir}
	ids, err := l.List()

	require.NoError(t, err)
	assert.Equal(t, []string{"pattern-1", "pattern-2", "pattern-10"}, ids)
}

func TestListEmptyDir(t *testing.T) {
	l := &Loader{Dir: t.TempDir()}

	ids, err := l.List()

	require.NoError(t, err)
	assert.Empty(t, ids)
}
