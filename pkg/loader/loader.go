// Package loader reads a directory tree into raw text documents for indexing.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docchat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

var (
	ErrDirectoryNotFound = errors.New("input directory not found")
	ErrNoDocuments       = errors.New("input directory contains no documents")
)

// Document is one source file flattened to text.
type Document struct {
	ID       string
	Path     string // relative to the loader root
	Title    string
	FileType string
	Content  string
	Metadata map[string]any
}

type DirectoryLoader struct {
	Dir       string
	Recursive bool
	logger    logger.ILogger
}

func NewDirectoryLoader(dir string, log logger.ILogger) *DirectoryLoader {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &DirectoryLoader{Dir: dir, Recursive: true, logger: log}
}

// Load returns every readable document under Dir. Hidden files and
// directories are skipped. A missing directory or an empty result is an error.
func (l *DirectoryLoader) Load(ctx context.Context) ([]Document, error) {
	info, err := os.Stat(l.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, l.Dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, l.Dir)
	}

	var docs []Document
	err = filepath.WalkDir(l.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path != l.Dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != l.Dir && !l.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		doc, ok, err := l.loadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		if ok {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, l.Dir)
	}

	l.logger.Info("Loader", "Documents loaded", map[string]interface{}{
		"dir":   l.Dir,
		"count": len(docs),
	})
	return docs, nil
}

func (l *DirectoryLoader) loadFile(ctx context.Context, path string) (Document, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, false, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	var pages []schema.Document

	switch ext {
	case ".pdf":
		pages, err = documentloaders.NewPDF(bytes.NewReader(data), int64(len(data))).Load(ctx)
	case ".html", ".htm":
		pages, err = documentloaders.NewHTML(bytes.NewReader(data)).Load(ctx)
	default:
		if !utf8.Valid(data) {
			l.logger.Warn("Loader", "Skipping binary file", map[string]interface{}{"path": path})
			return Document{}, false, nil
		}
		pages, err = documentloaders.NewText(bytes.NewReader(data)).Load(ctx)
	}
	if err != nil {
		return Document{}, false, err
	}

	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if text := strings.TrimSpace(p.PageContent); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		l.logger.Warn("Loader", "Skipping empty file", map[string]interface{}{"path": path})
		return Document{}, false, nil
	}

	rel, err := filepath.Rel(l.Dir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	fileType := strings.TrimPrefix(ext, ".")
	if fileType == "" {
		fileType = "txt"
	}

	return Document{
		ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+rel)).String(),
		Path:     rel,
		Title:    titleFromPath(rel),
		FileType: fileType,
		Content:  strings.Join(parts, "\n\n"),
		Metadata: map[string]any{
			"file_path": rel,
			"file_name": filepath.Base(rel),
			"file_type": fileType,
			"pages":     len(pages),
		},
	}, true, nil
}

func titleFromPath(rel string) string {
	name := filepath.Base(rel)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}
