// Package documents supplies the unstructured evidence attached to a property.
package documents

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-motivation/internal/model"
)

// Options narrows a document fetch.
type Options struct {
	// Types limits results to these document types; empty means all.
	Types []model.DocumentType
	// Since drops documents recorded before this time. Undated documents are kept.
	Since time.Time
	// Limit caps the number of documents returned; 0 means no cap.
	Limit int
}

// Fetcher returns the documents recorded against a property.
type Fetcher interface {
	GetDocuments(ctx context.Context, propertyID, jurisdictionID string, opts Options) ([]model.DocumentEvidence, error)
}

// DirFetcher reads documents from <root>/<jurisdiction>/<property>/*.{yaml,yml,json}.
// Each file holds either one document or a list of documents.
type DirFetcher struct {
	root string
}

// NewDirFetcher creates a DirFetcher rooted at dir.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{root: dir}
}

// GetDocuments returns the property's documents sorted by recording date,
// newest first. A missing property directory yields no documents.
func (f *DirFetcher) GetDocuments(ctx context.Context, propertyID, jurisdictionID string, opts Options) ([]model.DocumentEvidence, error) {
	if !safeSegment(propertyID) || !safeSegment(jurisdictionID) {
		return nil, eris.Errorf("documents: invalid property %q in %q", propertyID, jurisdictionID)
	}
	dir := filepath.Join(f.root, jurisdictionID, propertyID)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "documents: read %s", dir)
	}

	var docs []model.DocumentEvidence
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "documents: fetch")
		}
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		loaded, err := loadFile(path)
		if err != nil {
			zap.L().Warn("documents: skipping unreadable file", zap.String("path", path), zap.Error(err))
			continue
		}
		for i := range loaded {
			if loaded[i].ID == "" {
				loaded[i].ID = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
				if len(loaded) > 1 {
					loaded[i].ID += "#" + strconv.Itoa(i)
				}
			}
		}
		docs = append(docs, loaded...)
	}
	return filter(docs, opts), nil
}

func loadFile(path string) ([]model.DocumentEvidence, error) {
	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	case ".json":
		unmarshal = json.Unmarshal
	default:
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read")
	}

	var many []model.DocumentEvidence
	if err := unmarshal(data, &many); err != nil {
		var one model.DocumentEvidence
		if err := unmarshal(data, &one); err != nil {
			return nil, eris.Wrap(err, "decode")
		}
		many = []model.DocumentEvidence{one}
	}
	for i := range many {
		dt, err := model.ParseDocumentType(string(many[i].Type))
		if err != nil {
			return nil, err
		}
		many[i].Type = dt
	}
	return many, nil
}

func filter(docs []model.DocumentEvidence, opts Options) []model.DocumentEvidence {
	want := make(map[model.DocumentType]bool, len(opts.Types))
	for _, t := range opts.Types {
		want[t] = true
	}
	out := docs[:0]
	for _, d := range docs {
		if len(want) > 0 && !want[d.Type] {
			continue
		}
		if !opts.Since.IsZero() && d.RecordedAt != nil && d.RecordedAt.Before(opts.Since) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].RecordedAt, out[j].RecordedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

