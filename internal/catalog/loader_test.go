package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func ids(words []domain.Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.ID
	}
	return out
}

func TestLoaderLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "wordset_a1.json", `[
		{"id":"a1-1","term":"bonjour","meaning":"hello","freqRank":12,"topics":["greeting"]},
		{"id":"","term":"orphan"},
		{"id":"a1-2","term":"merci"}
	]`)
	writeFile(t, dir, "verbs.yaml", "- id: v1\n  term: aller\n  cefr: A1\n  freqRank: 30\n")
	writeFile(t, dir, "broken.json", `{"id":`)
	loader := NewLoader(dir, nil)

	t.Run("extension is optional", func(t *testing.T) {
		t.Parallel()
		words, err := loader.Load("wordset_a1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a1-1", "a1-2"}, ids(words), "words without id are skipped")
		rank, ok := words[0].Rank()
		assert.True(t, ok)
		assert.Equal(t, 12, rank)
		assert.Equal(t, []string{"greeting"}, words[0].Topics)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		words, err := loader.Load("verbs.yaml")
		require.NoError(t, err)
		require.Len(t, words, 1)
		assert.Equal(t, "aller", words[0].Term)
		assert.Equal(t, "A1", words[0].CEFR)
	})

	t.Run("missing pack", func(t *testing.T) {
		t.Parallel()
		_, err := loader.Load("nope")
		assert.ErrorIs(t, err, ErrPackNotFound)
	})

	t.Run("path escape", func(t *testing.T) {
		t.Parallel()
		_, err := loader.Load("../secrets.json")
		assert.ErrorIs(t, err, ErrInvalidPackName)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		_, err := loader.Load("broken")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrPackNotFound)
	})
}

func TestCanonicalName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"unit1", "unit1.json"},
		{"unit1.json", "unit1.json"},
		{"deck.yaml", "deck.yaml"},
		{"sheet.xlsx", "sheet.xlsx"},
		{AllCollections, AllCollections},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CanonicalName(tc.in), tc.in)
	}
	assert.Equal(t, CanonicalName("unit1"), CanonicalName("unit1.json"))
}

func TestLoaderLoadAll(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `[{"id":"2","term":"autre"},{"id":"6","term":"Merci"},{"id":"3","term":"pomme"}]`)
	writeFile(t, dir, "a.json", `[{"id":"1","term":"bonjour"},{"id":"2","term":"ça va"}]`)
	writeFile(t, dir, "c.yml", "- id: '4'\n  term: merci\n- id: '5'\n  term: chat\n")
	writeFile(t, dir, "z.json", `not json`)
	writeFile(t, dir, "notes.txt", `ignored`)
	loader := NewLoader(dir, nil)

	packs, err := loader.Packs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json", "c.yml", "z.json"}, packs)

	words, err := loader.Collection(AllCollections)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "6", "3", "5"}, ids(words))
}

func TestLoaderLoadAllMissingDir(t *testing.T) {
	t.Parallel()
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent"), nil).LoadAll()
	assert.Error(t, err)
}

func TestLoadWorkbook(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pack.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"ID", "Term", "Meaning", "freq_rank", "Topics"},
		{"x1", "maison", "house", "42", "home, building"},
		{"x2", "", "blank term"},
		{"x3", "chien", "dog"},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	words, err := LoadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, words, 2)

	assert.Equal(t, "maison", words[0].Term)
	assert.Equal(t, "house", words[0].Meaning)
	rank, ok := words[0].Rank()
	assert.True(t, ok)
	assert.Equal(t, 42, rank)
	assert.Equal(t, []string{"home", "building"}, words[0].Topics)

	_, ok = words[1].Rank()
	assert.False(t, ok)

	loaded, err := NewLoader(filepath.Dir(path), nil).Load("pack.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x3"}, ids(loaded))
}

func TestLoadWorkbookMissingColumn(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"term", "meaning"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := LoadWorkbook(path)
	assert.ErrorContains(t, err, `"id"`)
}

func TestFilter(t *testing.T) {
	t.Parallel()
	rank := func(r int) *int { return &r }
	words := []domain.Word{
		{ID: "1", Term: "a", CEFR: "A1", FreqRank: rank(10), Topics: []string{"Food"}},
		{ID: "2", Term: "b", CEFR: "A2", FreqRank: rank(9000)},
		{ID: "3", Term: "c", CEFR: "A1", Topics: []string{"travel"}},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero value keeps all", Filter{}, []string{"1", "2", "3"}},
		{"cefr", Filter{CEFR: "a1"}, []string{"1", "3"}},
		{"cefr all", Filter{CEFR: "All"}, []string{"1", "2", "3"}},
		{"high frequency keeps unranked", Filter{HighFrequencyOnly: true}, []string{"1", "3"}},
		{"topics", Filter{Topics: ParseTopics("food、 music")}, []string{"1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ids(tc.filter.Apply(words)))
		})
	}
}
