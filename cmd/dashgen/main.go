// Command dashgen writes Kibana saved-object exports for Trivy security
// reports.
package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog/badger"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/logging"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// Exit codes
const (
	exitIOError     = 1
	exitConfigError = 2
)

// app carries what every command needs. Tests swap the filesystem, the
// catalog opener and the clock.
type app struct {
	fs          afero.Fs
	out         io.Writer
	cfg         config.Config
	logCfg      logging.Config
	now         func() time.Time
	openCatalog func(dir string) (catalog.Catalog, error)
}

func newApp(fs afero.Fs, out io.Writer, cfg config.Config) *app {
	return &app{
		fs:          fs,
		out:         out,
		cfg:         cfg,
		logCfg:      logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat},
		now:         time.Now,
		openCatalog: openBadgerCatalog,
	}
}

func openBadgerCatalog(dir string) (catalog.Catalog, error) {
	return badger.New(badger.Config{Path: dir})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "dashgen",
		Short: "Generate Kibana dashboards for Trivy security reports",
		Long: "dashgen builds Kibana index patterns and Lens dashboards for Trivy reports\n" +
			"and writes them as saved-object export files (NDJSON) ready for import.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.logCfg.Validate(); err != nil {
				return errors.Mark(err, savedobject.ErrInvalidConfig)
			}
			logging.Setup(a.logCfg)
			return nil
		},
	}
	root.SetOut(a.out)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Mark(err, savedobject.ErrInvalidConfig)
	})
	logging.RegisterFlags(root.PersistentFlags(), &a.logCfg)

	root.AddCommand(
		newGenerateCommand(a),
		newBundleCommand(a),
		newVerifyCommand(a),
		newListCommand(a),
		newForgetCommand(a),
	)
	return root
}

// usageArgs marks positional argument errors as configuration errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return errors.Mark(err, savedobject.ErrInvalidConfig)
		}
		return nil
	}
}

func exitCode(err error) int {
	if savedobject.IsInvalidConfig(err) {
		return exitConfigError
	}
	return exitIOError
}

// withCatalog opens the catalog at dir for the duration of fn.
func (a *app) withCatalog(dir string, fn func(catalog.Catalog) error) error {
	cat, err := a.openCatalog(dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := cat.Close(); err != nil {
			log.Warn().Err(err).Str("catalog", dir).Msg("⚠️  failed to close catalog")
		}
	}()
	return fn(cat)
}

func main() {
	a := newApp(afero.NewOsFs(), os.Stdout, config.Load())
	if err := newRootCommand(a).ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("❌ dashgen failed")
		os.Exit(exitCode(err))
	}
}
