package corpus

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// embeddingsMagic identifies the embedding matrix file format.
// Layout: magic (4 bytes), uint32 row count, uint32 dimension, then
// rows*dimension little-endian float32 values.
const embeddingsMagic = "MRE1"

// maxDimension bounds the embedding width accepted from a bundle header.
// Real models in use are 384-3072 wide; anything larger is a corrupt header.
const maxDimension = 8192

// Config holds the file locations of the corpus bundle.
type Config struct {
	// DocumentsPath is a JSON array of record texts, index = document ID.
	DocumentsPath string `koanf:"documents_path"`

	// EmbeddingsPath is the binary embedding matrix (see embeddingsMagic).
	EmbeddingsPath string `koanf:"embeddings_path"`
}

// Validate checks that both bundle paths are set.
func (c Config) Validate() error {
	if c.DocumentsPath == "" {
		return fmt.Errorf("%w: documents path required", ErrBundle)
	}
	if c.EmbeddingsPath == "" {
		return fmt.Errorf("%w: embeddings path required", ErrBundle)
	}
	return nil
}

// Load reads the corpus bundle from disk and validates its consistency.
//
// Fails fast with an error wrapping ErrBundle if either file is missing or
// malformed, or if the embedding row count does not match the document
// count. There is no partial result: a bundle either loads completely or
// not at all.
func Load(cfg Config) (*Bundle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	docs, err := loadDocuments(cfg.DocumentsPath)
	if err != nil {
		return nil, err
	}

	embeddings, dim, err := loadEmbeddings(cfg.EmbeddingsPath)
	if err != nil {
		return nil, err
	}

	if len(embeddings) != len(docs) {
		return nil, fmt.Errorf("%w: %d documents but %d embedding rows",
			ErrBundle, len(docs), len(embeddings))
	}

	return &Bundle{
		Documents:  docs,
		Embeddings: embeddings,
		Dimension:  dim,
	}, nil
}

// loadDocuments reads the JSON document collection. Document IDs are
// assigned from position in the array.
func loadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading documents: %v", ErrBundle, err)
	}

	var texts []string
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("%w: parsing documents: %v", ErrBundle, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: document collection is empty", ErrBundle)
	}

	docs := make([]Document, len(texts))
	for i, text := range texts {
		docs[i] = Document{ID: i, Text: text}
	}
	return docs, nil
}

// loadEmbeddings reads the binary embedding matrix and returns the rows and
// their shared dimension.
func loadEmbeddings(path string) ([][]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: opening embeddings: %v", ErrBundle, err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: reading embeddings header: %v", ErrBundle, err)
	}
	if string(magic[:]) != embeddingsMagic {
		return nil, 0, fmt.Errorf("%w: bad embeddings magic %q", ErrBundle, string(magic[:]))
	}

	var rows, dim uint32
	if err := binary.Read(f, binary.LittleEndian, &rows); err != nil {
		return nil, 0, fmt.Errorf("%w: reading row count: %v", ErrBundle, err)
	}
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, 0, fmt.Errorf("%w: reading dimension: %v", ErrBundle, err)
	}
	if rows == 0 || dim == 0 {
		return nil, 0, fmt.Errorf("%w: empty embedding matrix (%d x %d)", ErrBundle, rows, dim)
	}
	if dim > maxDimension {
		return nil, 0, fmt.Errorf("%w: implausible embedding dimension %d", ErrBundle, dim)
	}

	matrix := make([][]float32, rows)
	buf := make([]byte, 4*dim)
	for i := range matrix {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, 0, fmt.Errorf("%w: truncated embedding matrix at row %d: %v", ErrBundle, i, err)
		}
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		matrix[i] = row
	}

	// Trailing bytes mean the header and payload disagree.
	if n, _ := f.Read(make([]byte, 1)); n != 0 {
		return nil, 0, fmt.Errorf("%w: embedding matrix has trailing data", ErrBundle)
	}

	return matrix, int(dim), nil
}

// WriteEmbeddings serializes an embedding matrix in the bundle format.
// Used by offline tooling to produce bundles the loader accepts.
func WriteEmbeddings(w io.Writer, matrix [][]float32) error {
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return fmt.Errorf("%w: cannot write empty matrix", ErrBundle)
	}
	dim := len(matrix[0])
	for i, row := range matrix {
		if len(row) != dim {
			return fmt.Errorf("%w: row %d has dimension %d, want %d", ErrBundle, i, len(row), dim)
		}
	}

	if _, err := w.Write([]byte(embeddingsMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(matrix))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(dim)); err != nil {
		return err
	}
	for _, row := range matrix {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return nil
}
