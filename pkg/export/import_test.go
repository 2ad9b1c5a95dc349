package export

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

func TestImporter_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	records := builtRecords(t)
	_, err := NewExporter(fs, Options{}).ExportFile("/exports/a.ndjson", records)
	require.NoError(t, err)

	result, err := NewImporter(fs).ReadFile("/exports/a.ndjson")
	require.NoError(t, err)
	require.Equal(t, "/exports/a.ndjson", result.Path)
	require.Len(t, result.Records, 2)
	require.NotNil(t, result.Summary)
	require.Equal(t, 2, result.Summary.ExportedCount)

	for i := range records {
		require.Equal(t, string(records[i].Bytes()), string(result.Records[i].Bytes()))
	}
}

func TestImporter_SkipsBlankLines(t *testing.T) {
	doc := "\n" +
		`{"id":"a","type":"index-pattern","references":[]}` + "\n" +
		"   \n" +
		`{"excludedObjects":[],"excludedObjectsCount":0,"exportedCount":1,"missingRefCount":0,"missingReferences":[]}` + "\n"

	result, err := NewImporter(afero.NewMemMapFs()).Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, "a", result.Records[0].ID)
}

func TestImporter_BadLine(t *testing.T) {
	doc := `{"id":"a","type":"index-pattern"}` + "\n" + `{"id":` + "\n"

	_, err := NewImporter(afero.NewMemMapFs()).Read(strings.NewReader(doc))
	require.Error(t, err)
	require.True(t, savedobject.IsInvalidConfig(err))
	require.Contains(t, err.Error(), "line 2")
}

func TestImporter_RejectsInvalidUTF8(t *testing.T) {
	doc := `{"id":"a","type":"index-pattern","attributes":{"title":"bad` + "\xff" + `"}}` + "\n"

	_, err := NewImporter(afero.NewMemMapFs()).Read(strings.NewReader(doc))
	require.Error(t, err)
	require.True(t, savedobject.IsInvalidConfig(err))
	require.Contains(t, err.Error(), "not valid UTF-8")
}

func TestImporter_MissingFile(t *testing.T) {
	_, err := NewImporter(afero.NewMemMapFs()).ReadFile("/nope.ndjson")
	require.Error(t, err)
	require.False(t, savedobject.IsInvalidConfig(err))
}

func TestImporter_CombineFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	records := builtRecords(t)
	exporter := NewExporter(fs, Options{AllowMissingRefs: true})

	_, err := exporter.ExportFile("/exports/ip.ndjson", records[:1])
	require.NoError(t, err)
	_, err = exporter.ExportFile("/exports/dash.ndjson", records)
	require.NoError(t, err)

	combined, err := NewImporter(fs).ReadFiles("/exports/ip.ndjson", "/exports/dash.ndjson")
	require.NoError(t, err)
	require.Len(t, combined, 3)

	doc, err := Build(combined, Options{})
	require.NoError(t, err)
	require.Len(t, doc.Records, 2)
	require.Equal(t, 1, doc.Duplicates)
	require.Zero(t, doc.Summary.MissingRefCount)
}

func TestImporter_Restamp(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := NewExporter(fs, Options{}).ExportFile("/a.ndjson", builtRecords(t))
	require.NoError(t, err)

	records, err := NewImporter(fs).ReadFiles("/a.ndjson")
	require.NoError(t, err)
	for i, rec := range records {
		require.Equal(t, "2024-01-01T00:00:00.000Z", rec.Get("updated_at").String())
		records[i], err = rec.Restamp(rec.Get("created_at").Time().AddDate(1, 0, 0))
		require.NoError(t, err)
	}
	require.Equal(t, "2025-01-01T00:00:00.000Z", records[1].Get("updated_at").String())
}
