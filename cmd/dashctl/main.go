// Command dashctl runs dashboard queries and exports against a JSON
// collection file, using the same engine and entity definitions as the
// server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/simp-lee/logger"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/Josphat84/myoffice-sub003/internal/config"
	"github.com/Josphat84/myoffice-sub003/internal/entity"
	"github.com/Josphat84/myoffice-sub003/internal/module/records"
	"github.com/Josphat84/myoffice-sub003/internal/source"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel    string
	locale      string
	warningDays int
	asOf        string

	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Query and export dashboard records from a JSON collection file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := config.SetupLogger(
				&config.LogConfig{Level: opts.logLevel, Format: "text"},
				logger.WithConsoleWriter(cmd.ErrOrStderr()),
			)
			if err != nil {
				return fmt.Errorf("setup logger: %w", err)
			}
			opts.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				opts.log.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.locale, "locale", "en", "BCP 47 locale for string ordering")
	root.PersistentFlags().IntVar(&opts.warningDays, "warning-days", config.DefaultCertificationWarningDays, "days before expiry a certification is due soon")
	root.PersistentFlags().StringVar(&opts.asOf, "as-of", "", "evaluate derived fields as of this date (YYYY-MM-DD)")

	root.AddCommand(newEntitiesCmd(opts))
	root.AddCommand(newQueryCmd(opts))
	root.AddCommand(newExportCmd(opts))
	return root
}

// registry builds the entity registry from the persistent flags.
func (o *globalOptions) registry() (*entity.Registry, error) {
	tag, err := language.Parse(o.locale)
	if err != nil {
		return nil, fmt.Errorf("invalid --locale %q: %w", o.locale, err)
	}
	if o.warningDays < 1 {
		return nil, fmt.Errorf("invalid --warning-days %d: must be at least 1", o.warningDays)
	}
	opts := entity.Options{
		CertificationWarning: time.Duration(o.warningDays) * 24 * time.Hour,
		Locale:               tag,
	}
	if o.asOf != "" {
		t, err := time.Parse(time.DateOnly, o.asOf)
		if err != nil {
			return nil, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", o.asOf)
		}
		opts.Now = func() time.Time { return t }
	}
	return entity.Default(opts), nil
}

// service wires a read-only records service over the collection at path.
func (o *globalOptions) service(path string) (records.Service, error) {
	reg, err := o.registry()
	if err != nil {
		return nil, err
	}
	return records.NewService(reg, source.NewFileSource(path), nil), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
