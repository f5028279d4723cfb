// Package cli provides the command-line interface for laying out documents.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georgepadayatti/pdflayout/config"
	"github.com/georgepadayatti/pdflayout/logging"
)

// Version information
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// osExit is a variable for os.Exit to allow testing
var osExit = os.Exit

// app holds the state shared by every command of one invocation.
type app struct {
	configFile string
	logLevel   string

	settings *config.Settings
	logger   *zap.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "pdflayout",
		Short:         "pdflayout lays out block, flex, grid and multi-column documents onto pages.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Sync(a.logger)
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "settings file (default is ./pdflayout.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newRenderCommand(a), newColumnsCommand(), newVersionCommand())
	return root
}

// initialize loads settings and builds the logger.
func (a *app) initialize() error {
	v := config.NewViper()
	if a.logLevel != "" {
		v.Set("logging.level", a.logLevel)
	}
	settings, err := config.LoadSettings(v, a.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(settings.Logging)
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = logger
	a.logger.Debug("Settings loaded",
		zap.String("version", Version),
		zap.String("config", v.ConfigFileUsed()),
	)
	return nil
}

// Run executes the CLI with the given arguments, excluding the program name.
// This is the main entry point for the CLI.
func Run(args []string) {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		osExit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			VersionCommand(cmd.OutOrStdout())
		},
	}
}

// VersionCommand prints version information.
func VersionCommand(w io.Writer) {
	fmt.Fprintf(w, "pdflayout version %s\n", Version)
	fmt.Fprintf(w, "Build time: %s\n", BuildTime)
}
