package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/andyballingall/rustfmt-quote/internal/config"
	"github.com/andyballingall/rustfmt-quote/internal/fs"
	"github.com/andyballingall/rustfmt-quote/internal/quote"
	"github.com/andyballingall/rustfmt-quote/internal/runner"
	"github.com/andyballingall/rustfmt-quote/internal/rustfmt"
	"github.com/andyballingall/rustfmt-quote/internal/validator"
)

// Version is the current version of rustfmt-quote, set at build time.
var Version = "dev"

var LongDescription = `
rustfmt-quote formats the Rust code inside quote! { ... } blocks, which rustfmt
itself leaves alone. Each block is disguised as an ordinary Rust item, passed
through rustfmt, and spliced back into the file.

With no paths, every .rs file below the current directory is formatted,
skipping .git and target. Files named on the command line are formatted as
they are; directories are walked. Each file that changes is reported as:

  rustfmt_quote <path>
`

// rootOptions holds the values of the flags of the root command.
type rootOptions struct {
	debug       bool
	noColour    bool
	check       bool
	diff        bool
	verbose     bool
	watch       bool
	output      formatValue
	configPath  pathValue
	rustfmtPath pathValue
	jobs        countValue
	indentWidth countValue
}

// NewRootCmd creates the root command and wires up dependencies.
func NewRootCmd(lazy *LazyManager, ll *slog.LevelVar, stderr io.Writer, envProvider fs.EnvProvider) *cobra.Command {
	opts := rootOptions{output: "text"}
	var logCloser io.Closer

	rootCmd := &cobra.Command{
		Use:           "rustfmt-quote [flags] [path...]",
		Short:         "Format the bodies of quote! macros with rustfmt",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Long:          LongDescription,
		Args:          cobra.ArbitraryArgs,
		Example: `
rustfmt-quote
rustfmt-quote src/lib.rs src/codegen
rustfmt-quote --check --diff
RUSTFMT_PATH=~/.cargo/bin/rustfmt rustfmt-quote -v`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.debug {
				ll.Set(slog.LevelDebug)
			}
			// Skip initialization for help, completion and init-config commands
			if cmd.Name() == "help" || isCompletionCommand(cmd) || cmd.Name() == InitConfigCmdName {
				return nil
			}
			// Skip if already initialised (e.g., in tests)
			if lazy.HasInner() {
				return nil
			}

			logger, closer, err := setupLogger(stderr, ll, envProvider)
			if err != nil {
				logger.Warn("logging to file disabled", "error", err)
			}
			logCloser = closer

			mgr, err := buildManager(cmd, &opts, logger, envProvider)
			if err != nil {
				return err
			}
			lazy.SetInner(mgr)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer func() {
				if logCloser != nil {
					_ = logCloser.Close()
				}
			}()

			ro := RunOptions{
				Check:     opts.check,
				Diff:      opts.diff,
				Verbose:   opts.verbose,
				Format:    string(opts.output),
				UseColour: !opts.noColour && isTerminal(cmd.OutOrStdout()),
			}

			if opts.watch {
				return lazy.WatchPaths(cmd.Context(), args, ro, nil)
			}
			return lazy.FormatPaths(cmd.Context(), args, ro)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.check, "check", false, "Do not write files; fail if any quote! block needs formatting")
	flags.BoolVar(&opts.diff, "diff", false, "Do not write files; print a diff of the changes instead")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print a summary of the run")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "Keep formatting files as they are saved")
	flags.VarP(&opts.output, "output", "o", "Output format (text, json)")
	flags.Var(&opts.configPath, "config", "Configuration file (default ./"+config.ConfigFile+")")
	flags.Var(&opts.rustfmtPath, "rustfmt", "Formatter executable (overrides $"+config.RustfmtPathEnvVar+")")
	flags.VarP(&opts.jobs, "jobs", "j", "Files formatted in parallel (default: number of CPUs)")
	flags.Var(&opts.indentWidth, "indent-width", "Spaces per indentation level of the source (default 4)")

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")

	rootCmd.PersistentFlags().BoolVarP(&opts.noColour, "nocolour", "c", false, "Disable colour in output")
	// Support alternate spellings
	rootCmd.PersistentFlags().BoolVar(&opts.noColour, "nocolor", false, "")
	rootCmd.PersistentFlags().BoolVar(&opts.noColour, "noColor", false, "")
	rootCmd.PersistentFlags().BoolVar(&opts.noColour, "noColour", false, "")
	_ = rootCmd.PersistentFlags().MarkHidden("nocolor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColour")

	// Subcommands
	rootCmd.AddCommand(NewInitConfigCmd())

	return rootCmd
}

// buildManager resolves the configuration and builds the formatting pipeline
// behind a CLIManager.
func buildManager(cmd *cobra.Command, opts *rootOptions, logger *slog.Logger,
	envProvider fs.EnvProvider,
) (*CLIManager, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	cfg, err := config.New(wd, string(opts.configPath), envProvider, validator.NewSanthoshCompiler())
	if err != nil {
		return nil, fmt.Errorf("configuration failed: %w", err)
	}
	applyFlags(cmd, opts, cfg)
	if vErr := cfg.Validate(); vErr != nil {
		return nil, fmt.Errorf("configuration failed: %w", vErr)
	}
	logger.Debug("configuration resolved", "file", cfg.Path, "formatter", cfg.Formatter.Command,
		"indentWidth", cfg.IndentWidth, "jobs", cfg.Jobs)

	filter, err := quote.NewFilter(cfg.ReservedMarkers)
	if err != nil {
		return nil, err
	}

	formatter := rustfmt.NewCLIFormatter(cfg.Formatter.Command, cfg.Formatter.Args, cfg.Timeout())
	rewriter := quote.NewRewriter(formatter, filter, logger)
	rewriter.SetIndentWidth(cfg.IndentWidth)

	r := runner.NewRunner(rewriter, logger)
	r.SetFilters(cfg.Extensions, cfg.ExcludeDirs)
	r.SetNumWorkers(cfg.Jobs)

	return NewCLIManager(logger, r, cmd.OutOrStdout()), nil
}

// applyFlags lets explicitly set flags override the configuration.
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("rustfmt") {
		cfg.Formatter.Command = string(opts.rustfmtPath)
	}
	if flags.Changed("jobs") {
		cfg.Jobs = int(opts.jobs)
	}
	if flags.Changed("indent-width") {
		cfg.IndentWidth = int(opts.indentWidth)
	}
}

// isCompletionCommand returns true if the command or any of its parents is the "completion" command.
func isCompletionCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}
