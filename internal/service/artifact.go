package service

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactWriter materializes run artifacts under a base directory. A file is
// either fully written or absent: content goes to a temporary file in the
// target directory and is renamed into place only after a successful sync.
type ArtifactWriter struct {
	baseDir string
}

func NewArtifactWriter(baseDir string) *ArtifactWriter {
	return &ArtifactWriter{baseDir: baseDir}
}

// Path resolves a relative artifact name inside the base directory.
func (w *ArtifactWriter) Path(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid artifact path %q", rel)
	}
	return filepath.Join(w.baseDir, clean), nil
}

// WriteFile streams content produced by fill into rel atomically.
func (w *ArtifactWriter) WriteFile(rel string, fill func(io.Writer) error) (err error) {
	dst, err := w.Path(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = fill(buf); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", rel, err)
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush artifact %s: %w", rel, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync artifact %s: %w", rel, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact %s: %w", rel, err)
	}
	if err = os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("failed to publish artifact %s: %w", rel, err)
	}
	return nil
}

// WriteJSON stores v as indented UTF-8 JSON.
func (w *ArtifactWriter) WriteJSON(rel string, v interface{}) error {
	return w.WriteFile(rel, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// ReadJSON loads an artifact previously written with WriteJSON.
func (w *ArtifactWriter) ReadJSON(rel string, v interface{}) error {
	path, err := w.Path(rel)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
