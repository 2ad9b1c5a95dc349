package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog/memory"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/export"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/trivy"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	fs      afero.Fs
	out     *bytes.Buffer
	catalog *memory.Catalog
	opened  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	color.NoColor = true
	return &harness{
		fs:      afero.NewMemMapFs(),
		out:     &bytes.Buffer{},
		catalog: memory.New(),
	}
}

func (h *harness) run(args ...string) error {
	h.out.Reset()
	a := newApp(h.fs, h.out, config.Config{OutputDir: "/out", LogLevel: "error"})
	a.now = func() time.Time { return fixedNow }
	a.openCatalog = func(dir string) (catalog.Catalog, error) {
		h.opened = append(h.opened, dir)
		return h.catalog, nil
	}

	root := newRootCommand(a)
	root.SetArgs(args)
	return root.Execute()
}

func (h *harness) records(t *testing.T, path string) []savedobject.Record {
	t.Helper()
	res, err := export.NewImporter(h.fs).ReadFile(path)
	require.NoError(t, err)
	return res.Records
}

func TestGenerate_DefaultSets(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("generate"))

	want := map[string]int{"all": 15, "navigation": 12, "overview": 4, "unified": 2}
	for set, n := range want {
		path := "/out/" + trivy.FileName(set)
		report, err := export.NewImporter(h.fs).VerifyFile(path)
		require.NoError(t, err)
		require.True(t, report.OK(), "%s: %v", path, report.Problems)
		require.Equal(t, n, report.Records, path)
	}

	out := h.out.String()
	require.Contains(t, out, "/out/trivy-all.ndjson (15 objects")
	require.Contains(t, out, "Trivy - Unified Security Dashboard")
	require.Contains(t, out, "Stack Management > Saved Objects > Import")
	require.Empty(t, h.opened)
}

func TestGenerate_Stamp(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("generate", "overview"))
	records := h.records(t, "/out/trivy-overview.ndjson")
	require.Equal(t, config.DefaultTimestamp, records[1].Get("updated_at").String())

	require.NoError(t, h.run("generate", "overview", "--stamp"))
	records = h.records(t, "/out/trivy-overview.ndjson")
	require.Equal(t, "2025-06-01T12:00:00.000Z", records[1].Get("updated_at").String())
}

const auditBlueprint = `
data_views:
  - id: k8s-audit
    title: k8s-audit-*
dashboards:
  - id: audit-overview
    title: Audit overview
    panels:
      - title: Events by verb
        data_view: k8s-audit
        grid: {w: 48, h: 15}
        columns:
          - {label: Verb, field: verb}
          - {label: Events}
`

func TestGenerate_BlueprintCombined(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "/bp/audit.yaml", []byte(auditBlueprint), 0o644))

	require.NoError(t, h.run("generate", "unified", "-b", "/bp/audit.yaml", "--combine", "everything", "-d", "/exports"))

	records := h.records(t, "/exports/everything.ndjson")
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	require.Equal(t, []string{"trivy-reports", trivy.UnifiedID, "k8s-audit", "audit-overview"}, ids)

	exists, err := afero.Exists(h.fs, "/exports/trivy-unified.ndjson")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestGenerate_BlueprintOwnFile(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "/bp/audit.yaml", []byte(auditBlueprint), 0o644))

	require.NoError(t, h.run("generate", "--blueprint", "/bp/audit.yaml"))
	require.Len(t, h.records(t, "/out/audit.ndjson"), 2)

	exists, err := afero.Exists(h.fs, "/out/trivy-all.ndjson")
	require.NoError(t, err)
	require.False(t, exists, "sets are only defaulted when no blueprint is given")
}

func TestGenerate_ConfigErrorWritesNothing(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "/bp/broken.yaml", []byte("dashboards:\n  - id: x\n    title: X\n    panels: []\n"), 0o644))

	for _, args := range [][]string{
		{"generate", "overview", "everything"},
		{"generate", "overview", "-b", "/bp/broken.yaml"},
		{"generate", "overview", "--no-such-flag"},
	} {
		err := h.run(args...)
		require.Error(t, err, "%v", args)
		require.Equal(t, exitConfigError, exitCode(err), "%v: %v", args, err)

		exists, err := afero.DirExists(h.fs, "/out")
		require.NoError(t, err)
		require.False(t, exists, "%v", args)
	}
}

func TestGenerate_MissingBlueprintIsIOError(t *testing.T) {
	h := newHarness(t)
	err := h.run("generate", "-b", "/bp/nope.yaml")
	require.Error(t, err)
	require.Equal(t, exitIOError, exitCode(err))
}

func TestGenerateThenBundleFromCatalog(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("generate", "overview", "unified", "--catalog", "/cat"))
	require.Equal(t, []string{"/cat"}, h.opened)

	entries, err := h.catalog.List(context.Background(), catalog.ListFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 5)

	require.NoError(t, h.run("bundle", "-o", "/out/mine.ndjson", "--catalog", "/cat",
		"--id", "trivy-reports", "--id", trivy.UnifiedID))
	records := h.records(t, "/out/mine.ndjson")
	require.Len(t, records, 2)
	require.Equal(t, trivy.UnifiedID, records[1].ID)

	err = h.run("bundle", "-o", "/out/x.ndjson", "--catalog", "/cat", "--id", "nope")
	require.Error(t, err)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.Equal(t, exitConfigError, exitCode(err))
}

func TestBundle_FromFiles(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("generate", "overview", "navigation"))

	require.NoError(t, h.run("bundle", "-o", "/out/combined.ndjson",
		"--from", "/out/trivy-overview.ndjson", "--from", "/out/trivy-navigation.ndjson", "--restamp"))

	records := h.records(t, "/out/combined.ndjson")
	require.Len(t, records, 15)
	for _, rec := range records {
		require.Equal(t, "2025-06-01T12:00:00.000Z", rec.Get("updated_at").String())
	}
	require.Contains(t, h.out.String(), "(15 objects")
}

func TestBundle_MissingReferences(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("generate", "overview"))

	all := h.records(t, "/out/trivy-overview.ndjson")
	var buf bytes.Buffer
	_, err := export.NewExporter(h.fs, export.Options{AllowMissingRefs: true}).Export(&buf, all[1:])
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(h.fs, "/in/dashboards.ndjson", buf.Bytes(), 0o644))

	err = h.run("bundle", "-o", "/out/b.ndjson", "--from", "/in/dashboards.ndjson")
	require.Error(t, err)
	require.Equal(t, exitConfigError, exitCode(err))

	require.NoError(t, h.run("bundle", "-o", "/out/b.ndjson", "--from", "/in/dashboards.ndjson", "--allow-missing-refs"))
	require.Contains(t, h.out.String(), "1 unresolved references")
}

func TestBundle_Usage(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"bundle", "--from", "/a.ndjson"},
		{"bundle", "-o", "/b.ndjson"},
		{"bundle", "-o", "/b.ndjson", "--id", "x"},
		{"bundle", "-o", "/b.ndjson", "extra"},
	} {
		err := h.run(args...)
		require.Error(t, err, "%v", args)
		require.Equal(t, exitConfigError, exitCode(err), "%v: %v", args, err)
	}
}

func TestVerify(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("generate", "unified"))

	require.NoError(t, h.run("verify", "/out/trivy-unified.ndjson"))
	require.Contains(t, h.out.String(), "/out/trivy-unified.ndjson (2 objects)")

	data, err := afero.ReadFile(h.fs, "/out/trivy-unified.ndjson")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(h.fs, "/out/cut.ndjson", bytes.TrimSuffix(data, []byte("\n")), 0o644))

	err = h.run("verify", "/out/trivy-unified.ndjson", "/out/cut.ndjson")
	require.Error(t, err)
	require.Equal(t, exitIOError, exitCode(err))
	require.Contains(t, h.out.String(), "does not end with a newline")

	err = h.run("verify")
	require.Equal(t, exitConfigError, exitCode(err))
}

func TestList(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("list"))
	out := h.out.String()
	require.Contains(t, out, "all -> trivy-all.ndjson, 14 dashboards")
	require.Contains(t, out, "trivy-nav-main")

	require.NoError(t, h.run("generate", "unified", "--catalog", "/cat"))
	require.NoError(t, h.run("list", "--catalog", "/cat", "--type", "dashboard"))
	out = h.out.String()
	require.Contains(t, out, trivy.UnifiedID)
	require.NotContains(t, out, "trivy-reports-*")
	require.Contains(t, out, "1 of 2 records")

	err := h.run("list", "--catalog", "/cat", "--type", "visualization")
	require.Equal(t, exitConfigError, exitCode(err))
}

func TestForget(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("generate", "unified", "--catalog", "/cat"))

	require.NoError(t, h.run("forget", "--catalog", "/cat", trivy.UnifiedID, "not-there"))
	require.Contains(t, h.out.String(), "removed 1 of 2 objects")

	_, err := h.catalog.Get(context.Background(), trivy.UnifiedID)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	err = h.run("forget", "x")
	require.Equal(t, exitConfigError, exitCode(err))
}

type renameFailFs struct {
	afero.Fs
	failOn string
}

func (fs renameFailFs) Rename(oldname, newname string) error {
	if newname == fs.failOn {
		return errors.New("disk full")
	}
	return fs.Fs.Rename(oldname, newname)
}

func TestGenerate_WriteFailureKeepsPreviousFiles(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("generate", "overview"))
	before, err := afero.ReadFile(h.fs, "/out/trivy-overview.ndjson")
	require.NoError(t, err)

	base := h.fs
	h.fs = renameFailFs{Fs: base, failOn: "/out/trivy-unified.ndjson"}
	err = h.run("generate", "overview", "unified", "--stamp")
	require.Error(t, err)
	require.Equal(t, exitIOError, exitCode(err))

	after, err := afero.ReadFile(base, "/out/trivy-overview.ndjson")
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))

	entries, err := afero.ReadDir(base, "/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRun_InvalidLoggingFlags(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"generate", "overview", "--log-level", "loud"},
		{"generate", "overview", "--log-format", "xml"},
	} {
		err := h.run(args...)
		require.Error(t, err, "%v", args)
		require.Equal(t, exitConfigError, exitCode(err), "%v: %v", args, err)

		exists, err := afero.DirExists(h.fs, "/out")
		require.NoError(t, err)
		require.False(t, exists, "%v", args)
	}
}
