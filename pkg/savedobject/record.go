package savedobject

import (
	"bytes"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
)

// Record is one saved object as it appears on an export line: compact JSON
// plus the header fields the exporter needs. Records built from typed objects
// and records read back from earlier exports are handled the same way; the
// line is always written verbatim.
type Record struct {
	ID         string
	Type       Type
	References []Reference

	line []byte
}

// Encode serializes v to a single compact JSON line and parses its header.
// HTML escaping is disabled so query strings stay readable in the file.
func Encode(v any) (Record, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return Record{}, errors.Wrap(err, "failed to encode saved object")
	}
	return Parse(buf.Bytes())
}

// Parse builds a Record from one JSON line. The line must be an object with
// a non-empty id and type; whitespace is compacted away.
func Parse(line []byte) (Record, error) {
	line = bytes.TrimSpace(line)
	if !utf8.Valid(line) {
		return Record{}, Invalidf("saved object is not valid UTF-8")
	}
	if !gjson.ValidBytes(line) {
		return Record{}, Invalidf("saved object is not valid JSON")
	}

	doc := gjson.ParseBytes(line)
	if !doc.IsObject() {
		return Record{}, Invalidf("saved object must be a JSON object")
	}

	id := doc.Get("id").String()
	if id == "" {
		return Record{}, Invalidf("saved object has no id")
	}
	typ := doc.Get("type").String()
	if typ == "" {
		return Record{}, Invalidf("saved object %q has no type", id)
	}

	refs, err := parseReferences(id, doc.Get("references"))
	if err != nil {
		return Record{}, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, line); err != nil {
		return Record{}, errors.Wrapf(err, "failed to compact saved object %q", id)
	}

	return Record{
		ID:         id,
		Type:       Type(typ),
		References: refs,
		line:       compact.Bytes(),
	}, nil
}

func parseReferences(id string, res gjson.Result) ([]Reference, error) {
	if !res.Exists() {
		return nil, nil
	}
	if !res.IsArray() {
		return nil, Invalidf("saved object %q: references must be a list", id)
	}

	var refs []Reference
	for _, r := range res.Array() {
		ref := Reference{
			ID:   r.Get("id").String(),
			Name: r.Get("name").String(),
			Type: Type(r.Get("type").String()),
		}
		if ref.ID == "" {
			return nil, Invalidf("saved object %q: reference %q has no id", id, ref.Name)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Bytes returns the compact JSON line without a trailing newline.
func (r Record) Bytes() []byte {
	return r.line
}

// MarshalJSON returns the stored line unchanged.
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.line) == 0 {
		return nil, errors.Newf("saved object %q was not encoded", r.ID)
	}
	return r.line, nil
}

// Title returns attributes.title, or "" when absent.
func (r Record) Title() string {
	return r.Get("attributes.title").String()
}

// Get looks up a gjson path in the stored line.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r.line, path)
}

// Fingerprint hashes the compact line. Equal fingerprints mean the records
// would be written identically.
func (r Record) Fingerprint() uint64 {
	return xxhash.Sum64(r.line)
}

// Restamp returns a copy of the record with updated_at set to ts.
func (r Record) Restamp(ts time.Time) (Record, error) {
	line, err := sjson.SetBytes(r.line, "updated_at", ts.UTC().Format(config.TimestampLayout))
	if err != nil {
		return Record{}, errors.Wrapf(err, "failed to restamp saved object %q", r.ID)
	}
	return Parse(line)
}

// Panels returns the panel list embedded in a dashboard's panelsJSON, or an
// empty result for other types.
func (r Record) Panels() gjson.Result {
	if r.Type != DashboardType {
		return gjson.Result{}
	}
	return gjson.Parse(r.Get("attributes.panelsJSON").String())
}
