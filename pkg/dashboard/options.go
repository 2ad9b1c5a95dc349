package dashboard

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
)

// Options control the bookkeeping fields of built records.
type Options struct {
	// Stamp sets created_at and updated_at. The zero value uses a fixed
	// timestamp so repeated runs produce identical files.
	Stamp time.Time
}

func (o Options) timestamp() string {
	if o.Stamp.IsZero() {
		return config.DefaultTimestamp
	}
	return o.Stamp.UTC().Format(config.TimestampLayout)
}

// jsonString encodes v as the string-embedded JSON Kibana uses for
// panelsJSON, optionsJSON and friends.
func jsonString(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "failed to encode embedded JSON")
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
