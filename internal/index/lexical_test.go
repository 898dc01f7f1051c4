package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/medrag/internal/corpus"
)

func testDocs() []corpus.Document {
	return []corpus.Document{
		{ID: 0, Text: "Patient diagnosed with atrial fibrillation, prescribed warfarin."},
		{ID: 1, Text: "Migraine with aura, treated with sumatriptan and rest."},
		{ID: 2, Text: "Routine checkup, no complaints, blood pressure normal."},
	}
}

func TestNewLexical(t *testing.T) {
	lex, err := NewLexical(testDocs())
	require.NoError(t, err)
	t.Cleanup(func() { _ = lex.Close() })

	_, err = NewLexical(nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestLexicalSearch(t *testing.T) {
	lex, err := NewLexical(testDocs())
	require.NoError(t, err)
	t.Cleanup(func() { _ = lex.Close() })

	hits, err := lex.Search("atrial fibrillation warfarin", 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, 0, hits[0].DocumentID)
	assert.Greater(t, hits[0].Score, 0.0)

	// Scores come back best first.
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestLexicalSearchNoMatch(t *testing.T) {
	lex, err := NewLexical(testDocs())
	require.NoError(t, err)
	t.Cleanup(func() { _ = lex.Close() })

	hits, err := lex.Search("zzzzxqwv", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestLexicalSearchInvalidK(t *testing.T) {
	lex, err := NewLexical(testDocs())
	require.NoError(t, err)
	t.Cleanup(func() { _ = lex.Close() })

	_, err = lex.Search("migraine", 0)
	assert.ErrorIs(t, err, ErrInvalidK)
}
