package snapshot

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/sitesnap/internal/model"
)

// ErrEmptySnapshot is returned by Load when the file holds no documents.
var ErrEmptySnapshot = errors.New("snapshot: file contains no documents")

// Compressed reports whether a snapshot path will be gzip-compressed.
func Compressed(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// Save writes documents to path as an indented JSON array. A .gz suffix
// selects gzip compression. The parent directory is created if missing.
func Save(path string, docs []model.PageDocument) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if Compressed(path) {
		gz = gzip.NewWriter(f)
		w = gz
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if docs == nil {
		docs = []model.PageDocument{}
	}
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish compression: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save. Compression is detected from
// the path suffix, mirroring Save.
func Load(path string) ([]model.PageDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if Compressed(path) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed snapshot: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var docs []model.PageDocument
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return docs, nil
}

// LoadNonEmpty is Load with an ErrEmptySnapshot guard for callers that
// need at least one document.
func LoadNonEmpty(path string) ([]model.PageDocument, error) {
	docs, err := Load(path)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySnapshot, path)
	}
	return docs, nil
}
