package export

import (
	"bufio"
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// MaxLineSize bounds a single export line. Dashboards with many panels embed
// large panelsJSON strings, well beyond bufio's default token size.
const MaxLineSize = 64 << 20

// Importer reads records back from earlier export files
type Importer struct {
	fs afero.Fs
}

// NewImporter creates an importer reading from fs.
func NewImporter(fs afero.Fs) *Importer {
	return &Importer{fs: fs}
}

// ImportResult holds the records of one export file, in file order.
type ImportResult struct {
	Path    string
	Records []savedobject.Record
	// Summary is the file's trailing summary, nil if it had none.
	Summary *savedobject.Summary
}

// Read parses an export document. Blank lines and the summary line are
// skipped; every other line must be a saved object and is kept verbatim.
func (im *Importer) Read(r io.Reader) (*ImportResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	result := &ImportResult{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if savedobject.IsSummary(line) {
			s, err := savedobject.ParseSummary(line)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			result.Summary = &s
			continue
		}
		rec, err := savedobject.Parse(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		result.Records = append(result.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read export")
	}
	return result, nil
}

// ReadFile reads the export document at path.
func (im *Importer) ReadFile(path string) (*ImportResult, error) {
	f, err := im.fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	result, err := im.Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	result.Path = path
	return result, nil
}

// ReadFiles reads several exports and concatenates their records in the
// order given.
func (im *Importer) ReadFiles(paths ...string) ([]savedobject.Record, error) {
	var records []savedobject.Record
	for _, p := range paths {
		result, err := im.ReadFile(p)
		if err != nil {
			return nil, err
		}
		records = append(records, result.Records...)
	}
	return records, nil
}
