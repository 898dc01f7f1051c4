package corpus

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBundle writes a documents file and an embeddings file into dir and
// returns a Config pointing at them.
func writeBundle(t *testing.T, dir string, texts []string, matrix [][]float32) Config {
	t.Helper()

	docsPath := filepath.Join(dir, "documents.json")
	data, err := json.Marshal(texts)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(docsPath, data, 0o600))

	embPath := filepath.Join(dir, "embeddings.bin")
	var buf bytes.Buffer
	require.NoError(t, WriteEmbeddings(&buf, matrix))
	require.NoError(t, os.WriteFile(embPath, buf.Bytes(), 0o600))

	return Config{DocumentsPath: docsPath, EmbeddingsPath: embPath}
}

func TestLoad(t *testing.T) {
	cfg := writeBundle(t, t.TempDir(),
		[]string{"patient a has hypertension", "patient b has migraines"},
		[][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}},
	)

	bundle, err := Load(cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, bundle.Len())
	assert.Equal(t, 3, bundle.Dimension)
	assert.Equal(t, 0, bundle.Documents[0].ID)
	assert.Equal(t, 1, bundle.Documents[1].ID)
	assert.Equal(t, "patient b has migraines", bundle.Documents[1].Text)
	assert.InDelta(t, 0.5, bundle.Embeddings[1][1], 1e-6)
}

func TestLoadCountMismatch(t *testing.T) {
	cfg := writeBundle(t, t.TempDir(),
		[]string{"only one document"},
		[][]float32{{1, 2}, {3, 4}},
	)

	_, err := Load(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBundle)
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(Config{
		DocumentsPath:  filepath.Join(dir, "nope.json"),
		EmbeddingsPath: filepath.Join(dir, "nope.bin"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBundle)
}

func TestLoadConfigValidation(t *testing.T) {
	_, err := Load(Config{})
	assert.ErrorIs(t, err, ErrBundle)

	_, err = Load(Config{DocumentsPath: "docs.json"})
	assert.ErrorIs(t, err, ErrBundle)
}

func TestLoadBadMagic(t *testing.T) {
	dir := t.TempDir()
	cfg := writeBundle(t, dir, []string{"doc"}, [][]float32{{1}})

	// Corrupt the magic bytes.
	require.NoError(t, os.WriteFile(cfg.EmbeddingsPath, []byte("XXXXgarbage"), 0o600))

	_, err := Load(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBundle)
	assert.Contains(t, err.Error(), "magic")
}

func TestLoadTruncatedMatrix(t *testing.T) {
	dir := t.TempDir()
	cfg := writeBundle(t, dir, []string{"a", "b"}, [][]float32{{1, 2}, {3, 4}})

	data, err := os.ReadFile(cfg.EmbeddingsPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.EmbeddingsPath, data[:len(data)-4], 0o600))

	_, err = Load(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBundle)
	assert.Contains(t, err.Error(), "truncated")
}

func TestLoadTrailingData(t *testing.T) {
	dir := t.TempDir()
	cfg := writeBundle(t, dir, []string{"a"}, [][]float32{{1, 2}})

	data, err := os.ReadFile(cfg.EmbeddingsPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.EmbeddingsPath, append(data, 0xde, 0xad), 0o600))

	_, err = Load(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBundle)
}

func TestLoadEmptyDocuments(t *testing.T) {
	dir := t.TempDir()
	docsPath := filepath.Join(dir, "documents.json")
	require.NoError(t, os.WriteFile(docsPath, []byte("[]"), 0o600))

	embPath := filepath.Join(dir, "embeddings.bin")
	var buf bytes.Buffer
	require.NoError(t, WriteEmbeddings(&buf, [][]float32{{1}}))
	require.NoError(t, os.WriteFile(embPath, buf.Bytes(), 0o600))

	_, err := Load(Config{DocumentsPath: docsPath, EmbeddingsPath: embPath})
	assert.ErrorIs(t, err, ErrBundle)
}

func TestWriteEmbeddingsRaggedMatrix(t *testing.T) {
	var buf bytes.Buffer
	err := WriteEmbeddings(&buf, [][]float32{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrBundle)
}
