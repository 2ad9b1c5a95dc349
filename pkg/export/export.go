package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// Exporter writes saved-object export documents.
type Exporter struct {
	fs   afero.Fs
	opts Options
}

// NewExporter creates an exporter writing to fs.
func NewExporter(fs afero.Fs, opts Options) *Exporter {
	return &Exporter{fs: fs, opts: opts}
}

// ObjectInfo identifies one exported object.
type ObjectInfo struct {
	ID    string           `json:"id"`
	Type  savedobject.Type `json:"type"`
	Title string           `json:"title"`
}

// ExportResult contains stats about the export
type ExportResult struct {
	Path              string                         `json:"path,omitempty"`
	Objects           []ObjectInfo                   `json:"objects"`
	ExportedCount     int                            `json:"exported_count"`
	Duplicates        int                            `json:"duplicates"`
	MissingReferences []savedobject.MissingReference `json:"missing_references,omitempty"`
	BytesWritten      int64                          `json:"bytes_written"`
}

func newResult(doc *Document, n int64) *ExportResult {
	objects := make([]ObjectInfo, len(doc.Records))
	for i, rec := range doc.Records {
		objects[i] = ObjectInfo{ID: rec.ID, Type: rec.Type, Title: rec.Title()}
	}
	return &ExportResult{
		Objects:           objects,
		ExportedCount:     doc.Summary.ExportedCount,
		Duplicates:        doc.Duplicates,
		MissingReferences: doc.Summary.MissingReferences,
		BytesWritten:      n,
	}
}

// Export serializes records to w. The whole document is assembled before
// the first write, so validation or encoding failures leave w untouched.
func (e *Exporter) Export(w io.Writer, records []savedobject.Record) (*ExportResult, error) {
	doc, data, err := e.assemble(records)
	if err != nil {
		return nil, err
	}
	n, err := w.Write(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write export")
	}
	return newResult(doc, int64(n)), nil
}

// ExportFile writes records to path. The document goes to a temporary file
// in the same directory which is then renamed over path; on any failure the
// temporary file is removed and path is left as it was.
func (e *Exporter) ExportFile(path string, records []savedobject.Record) (*ExportResult, error) {
	results, err := e.ExportFiles([]FileExport{{Path: path, Records: records}})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// FileExport is one document of a multi-file export.
type FileExport struct {
	Path    string
	Records []savedobject.Record
}

// ExportFiles writes several documents as one unit. Every document is built
// and written to a temporary file before any target is replaced. If moving
// one into place fails, targets already replaced are restored to their
// previous content (or removed when they did not exist).
func (e *Exporter) ExportFiles(files []FileExport) ([]*ExportResult, error) {
	results := make([]*ExportResult, len(files))
	data := make([][]byte, len(files))
	for i, f := range files {
		doc, b, err := e.assemble(f.Records)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", f.Path)
		}
		results[i] = newResult(doc, int64(len(b)))
		results[i].Path = f.Path
		data[i] = b
	}

	var staged []stagedFile
	for i, f := range files {
		st, err := stageFile(e.fs, f.Path, data[i])
		if err != nil {
			discard(e.fs, staged)
			return nil, err
		}
		staged = append(staged, st)
	}

	if err := commit(e.fs, staged); err != nil {
		return nil, err
	}

	for _, res := range results {
		log.Debug().
			Str("path", res.Path).
			Int("objects", res.ExportedCount).
			Int("duplicates", res.Duplicates).
			Msg("export written")
	}
	return results, nil
}

func (e *Exporter) assemble(records []savedobject.Record) (*Document, []byte, error) {
	doc, err := Build(records, e.opts)
	if err != nil {
		return nil, nil, err
	}
	data, err := doc.Bytes()
	if err != nil {
		return nil, nil, err
	}
	if len(doc.Summary.MissingReferences) > 0 {
		log.Warn().
			Int("missing", doc.Summary.MissingRefCount).
			Msg("export has unresolved references")
	}
	return doc, data, nil
}

// stagedFile is a fully written temporary file waiting to replace target.
type stagedFile struct {
	target string
	tmp    string
	backup string // previous target content, set during commit
}

func stageFile(fs afero.Fs, path string, data []byte) (st stagedFile, err error) {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, config.DirPerm); err != nil {
		return st, errors.Wrapf(err, "failed to create directory %s", dir)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return st, errors.Wrapf(err, "failed to create temporary file in %s", dir)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = fs.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return st, errors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		return st, errors.Wrapf(err, "failed to sync %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return st, errors.Wrapf(err, "failed to close %s", tmp.Name())
	}
	if err = fs.Chmod(tmp.Name(), os.FileMode(config.FilePerm)); err != nil {
		return st, errors.Wrapf(err, "failed to chmod %s", tmp.Name())
	}
	return stagedFile{target: path, tmp: tmp.Name()}, nil
}

// commit moves staged files into place, undoing earlier moves on failure.
func commit(fs afero.Fs, staged []stagedFile) error {
	for i := range staged {
		if err := replace(fs, &staged[i]); err != nil {
			rollback(fs, staged[:i])
			discard(fs, staged[i:])
			return err
		}
	}
	for _, st := range staged {
		if st.backup != "" {
			_ = fs.Remove(st.backup)
		}
	}
	return nil
}

func replace(fs afero.Fs, st *stagedFile) error {
	exists, err := afero.Exists(fs, st.target)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", st.target)
	}
	if exists {
		backup := st.tmp + ".prev"
		if err := fs.Rename(st.target, backup); err != nil {
			return errors.Wrapf(err, "failed to set aside %s", st.target)
		}
		st.backup = backup
	}
	if err := fs.Rename(st.tmp, st.target); err != nil {
		if st.backup != "" {
			_ = fs.Rename(st.backup, st.target)
			st.backup = ""
		}
		return errors.Wrapf(err, "failed to move export into place at %s", st.target)
	}
	return nil
}

func rollback(fs afero.Fs, committed []stagedFile) {
	for i := len(committed) - 1; i >= 0; i-- {
		st := committed[i]
		_ = fs.Remove(st.target)
		if st.backup == "" {
			continue
		}
		if err := fs.Rename(st.backup, st.target); err != nil {
			log.Error().Err(err).Str("path", st.target).Str("backup", st.backup).
				Msg("failed to restore previous export")
		}
	}
}

func discard(fs afero.Fs, staged []stagedFile) {
	for _, st := range staged {
		_ = fs.Remove(st.tmp)
	}
}
