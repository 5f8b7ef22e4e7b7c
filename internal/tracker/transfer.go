package tracker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/jobtrack/internal/csvio"
)

// File is a named CSV document ready to be saved or downloaded.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ImportResult summarises a successful import.
type ImportResult struct {
	Kind    Kind `json:"kind"`
	Applied int  `json:"applied"`
	Created int  `json:"created"`
	Updated int  `json:"updated"`
}

// Filename is the export file name of kind.
func Filename(kind Kind) string { return string(kind) + ".csv" }

func exportFile[T entity](kind Kind, s schema[T], items []T) File {
	records := make([]csvio.Record, len(items))
	for i, v := range items {
		records[i] = s.record(v)
	}
	return File{Name: Filename(kind), Content: csvio.Encode(records, s.columns())}
}

// Export renders one collection as CSV. An empty collection yields the
// header line only.
func (s *State) Export(kind Kind) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindCompanies:
		return exportFile(kind, companySchema, s.companies), nil
	case KindApplications:
		return exportFile(kind, applicationSchema, s.applications), nil
	case KindReferences:
		return exportFile(kind, referenceSchema, s.references), nil
	}
	return File{}, fmt.Errorf("%w %q", ErrUnknownKind, kind)
}

// ExportAll renders every collection as its own document, in Kinds order.
func (s *State) ExportAll() []File {
	s.mu.Lock()
	defer s.mu.Unlock()

	return []File{
		exportFile(KindCompanies, companySchema, s.companies),
		exportFile(KindApplications, applicationSchema, s.applications),
		exportFile(KindReferences, referenceSchema, s.references),
	}
}

// merge applies rows strictly in file order: a row whose id exists
// overwrites only the fields it carries, other rows are appended with the
// schema defaults filled in. All rows are decoded first so that a bad row
// leaves items untouched.
func merge[T entity](s schema[T], doc csvio.Document, items []T) ([]T, ImportResult, error) {
	rows := doc.Records()
	patches := make([]patch[T], 0, len(rows))
	for i, row := range rows {
		p, err := s.decode(row, i+1)
		if err != nil {
			return nil, ImportResult{}, err
		}
		patches = append(patches, p)
	}

	out := append([]T(nil), items...)
	var res ImportResult
	for _, p := range patches {
		if i := indexOf(out, p.id); i >= 0 {
			if err := p.apply(&out[i]); err != nil {
				return nil, ImportResult{}, err
			}
			res.Updated++
		} else {
			v, err := p.create()
			if err != nil {
				return nil, ImportResult{}, err
			}
			if s.finish != nil {
				s.finish(&v)
			}
			out = append(out, v)
			res.Created++
		}
		res.Applied++
	}
	return out, res, nil
}

// Import parses text as a CSV document of kind and merges its rows by id.
// Format and validation failures abort the whole file; on success the
// collection is persisted once.
func (s *State) Import(kind Kind, text string) (ImportResult, error) {
	doc, err := csvio.ParseDocument(text)
	if err != nil {
		return ImportResult{}, &ImportError{Kind: kind, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res ImportResult
	switch kind {
	case KindCompanies:
		var out []Company
		if out, res, err = merge(companySchema, doc, s.companies); err == nil {
			s.companies = out
		}
	case KindApplications:
		var out []Application
		if out, res, err = merge(applicationSchema, doc, s.applications); err == nil {
			s.applications = out
		}
	case KindReferences:
		var out []Reference
		if out, res, err = merge(referenceSchema, doc, s.references); err == nil {
			s.references = out
		}
	default:
		err = fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return ImportResult{}, &ImportError{Kind: kind, Err: err}
	}

	s.persist(kind)
	res.Kind = kind
	return res, nil
}

// WriteFiles saves files into dir concurrently and returns their paths in
// the order given.
func WriteFiles(ctx context.Context, dir string, files []File) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			p := filepath.Join(dir, f.Name)
			if err := os.WriteFile(p, []byte(f.Content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", f.Name, err)
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
