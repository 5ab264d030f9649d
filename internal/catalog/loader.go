// Package catalog loads vocabulary packs from disk. A pack is a JSON or YAML
// array of words, or an xlsx workbook. The scheduling core treats a loaded pack
// as a read-only snapshot.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/phrazzld/scry-trainer/internal/domain"
	"gopkg.in/yaml.v3"
)

// AllCollections is the collection name that stands for every pack in the directory.
const AllCollections = "all"

var (
	// ErrPackNotFound is returned when a named pack does not exist.
	ErrPackNotFound = errors.New("vocabulary pack not found")

	// ErrInvalidPackName is returned for names that would escape the catalog directory.
	ErrInvalidPackName = errors.New("invalid pack name")
)

var packExtensions = []string{".json", ".yaml", ".yml", ".xlsx"}

// Loader reads packs from a directory.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dir:    dir,
		logger: logger.With(slog.String("component", "catalog_loader")),
	}
}

// Dir returns the catalog directory.
func (l *Loader) Dir() string {
	return l.dir
}

// CanonicalName returns the key a collection is stored under: AllCollections
// as is, and a bare pack name with ".json" appended.
func CanonicalName(name string) string {
	if name == "" || name == AllCollections || filepath.Ext(name) != "" {
		return name
	}
	return name + ".json"
}

// Load reads the pack called name. A name without an extension is read as JSON.
func (l *Loader) Load(name string) ([]domain.Word, error) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPackName, name)
	}
	name = CanonicalName(name)

	path := filepath.Join(l.dir, name)
	words, err := l.decodeFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPackNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Debug("pack loaded", slog.String("pack", name), slog.Int("words", len(words)))
	return words, nil
}

// Collection loads name, or every pack when name is AllCollections.
func (l *Loader) Collection(name string) ([]domain.Word, error) {
	if name == AllCollections {
		return l.LoadAll()
	}
	return l.Load(name)
}

// Packs lists the pack file names in lexical order.
func (l *Loader) Packs() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(packExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// LoadAll concatenates every pack in lexical order, dropping words whose ID
// or lowercased term has already been seen. Packs that fail to decode are
// logged and skipped.
func (l *Loader) LoadAll() ([]domain.Word, error) {
	names, err := l.Packs()
	if err != nil {
		return nil, err
	}

	var all []domain.Word
	for _, name := range names {
		words, err := l.decodeFile(filepath.Join(l.dir, name))
		if err != nil {
			l.logger.Error("skipping unreadable pack",
				slog.String("pack", name),
				slog.String("error", err.Error()))
			continue
		}
		all = append(all, words...)
	}

	out := Dedup(all)
	l.logger.Info("catalog loaded",
		slog.Int("packs", len(names)),
		slog.Int("words", len(out)))
	return out, nil
}

// Dedup keeps the first occurrence of each ID and of each lowercased term.
func Dedup(words []domain.Word) []domain.Word {
	seenIDs := make(map[string]struct{}, len(words))
	seenTerms := make(map[string]struct{}, len(words))
	out := make([]domain.Word, 0, len(words))
	for _, w := range words {
		term := strings.ToLower(w.Term)
		if _, ok := seenIDs[w.ID]; ok {
			continue
		}
		if _, ok := seenTerms[term]; ok {
			continue
		}
		seenIDs[w.ID] = struct{}{}
		seenTerms[term] = struct{}{}
		out = append(out, w)
	}
	return out
}

func (l *Loader) decodeFile(path string) ([]domain.Word, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return l.valid(path, LoadWorkbook)
	}
	return l.valid(path, func(path string) ([]domain.Word, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var words []domain.Word
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &words)
		default:
			err = json.Unmarshal(data, &words)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
		}
		return words, nil
	})
}

// valid decodes path and drops words without an ID or term.
func (l *Loader) valid(path string, decode func(string) ([]domain.Word, error)) ([]domain.Word, error) {
	words, err := decode(path)
	if err != nil {
		return nil, err
	}
	out := words[:0]
	for _, w := range words {
		if err := w.Validate(); err != nil {
			l.logger.Warn("skipping invalid word",
				slog.String("pack", filepath.Base(path)),
				slog.String("id", w.ID),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, w)
	}
	return out, nil
}
