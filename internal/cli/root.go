// Package cli implements the neo command line: inspect a single NEO or query
// close approaches and print or export the results.
package cli

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idumahg/NearEarthObjects/internal/config"
	"github.com/idumahg/NearEarthObjects/internal/database"
	"github.com/idumahg/NearEarthObjects/internal/ingestion"
	"github.com/idumahg/NearEarthObjects/internal/logging"
)

const rootShortDescription = "Explore near-Earth objects and their close approaches to Earth"
const rootLongDescription = `Command "neo"

Loads NEOs from a CSV or XLSX file and close approaches from a JSON file,
links them by primary designation and answers queries over them.

Settings are read from config.yaml in the --config directory, then from
NEO_* environment variables (e.g. NEO_DATA_NEOS), then from flags.
`

// RootCommand owns the cobra command tree and the collaborators shared by
// subcommands.
type RootCommand struct {
	cmd    *cobra.Command
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	config config.Config
	logger *zap.SugaredLogger
}

// NewRootCommand builds the command tree. Data files are read from and results
// written to fs.
func NewRootCommand(fs afero.Fs, stdout, stderr io.Writer) *RootCommand {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	root := &RootCommand{
		fs:     fs,
		stdout: stdout,
		stderr: stderr,
		config: config.DefaultConfig(),
	}
	root.logger = consoleLogger(stderr, root.config.Log.Level)

	defaults := config.DefaultConfig()
	root.cmd = &cobra.Command{
		Use:               "neo",
		Short:             rootShortDescription,
		Long:              rootLongDescription,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: root.setup,
	}
	root.cmd.SetOut(stdout)
	root.cmd.SetErr(stderr)

	flags := root.cmd.PersistentFlags()
	flags.String("neofile", defaults.Data.NEOs, "path to the CSV or XLSX file of near-Earth objects")
	flags.String("cadfile", defaults.Data.Approaches, "path to the JSON file of close approaches")
	flags.String("config", ".", "directory containing config.yaml")
	flags.String("log-level", defaults.Log.Level, "log level: debug, info, warn or error")
	flags.Bool("log-json", defaults.Log.JSON, "log as JSON lines")

	root.cmd.AddCommand(
		inspectCommand(root),
		queryCommand(root),
	)
	return root
}

// SetArgs overrides the arguments, os.Args[1:] by default.
func (root *RootCommand) SetArgs(args []string) {
	root.cmd.SetArgs(args)
}

// Execute runs the selected command. Errors are logged before being returned.
func (root *RootCommand) Execute(ctx context.Context) error {
	err := root.cmd.ExecuteContext(ctx)
	if err != nil {
		root.logger.Error(err.Error())
	}
	_ = root.logger.Sync()
	return err
}

// consoleLogger is the logger used until the configuration is loaded. It falls
// back to a no-op logger if the level is invalid.
func consoleLogger(w io.Writer, level string) *zap.SugaredLogger {
	logger, err := logging.NewLogger(w, level, false)
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger
}

func (root *RootCommand) setup(cmd *cobra.Command, _ []string) error {
	configDir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configDir, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(root.stderr, cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	root.config = cfg
	root.logger = logger
	if cfg.File != "" {
		logger.Debugw("loaded config file", "path", cfg.File)
	}
	return nil
}

func (root *RootCommand) openDatabase(ctx context.Context) (*database.NEODatabase, error) {
	loader := ingestion.NewLoader(root.fs)

	neos, err := loader.LoadNEOs(root.config.Data.NEOs)
	if err != nil {
		return nil, err
	}
	approaches, err := loader.LoadApproaches(root.config.Data.Approaches)
	if err != nil {
		return nil, err
	}
	root.logger.Debugw("loaded input files", "neos", len(neos), "approaches", len(approaches))

	return database.New(ctx, neos, approaches, root.logger)
}
