package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/l-e-x/leos-sub016/internal/api"
	"github.com/l-e-x/leos-sub016/internal/config"
	"github.com/l-e-x/leos-sub016/internal/grammar"
	"github.com/l-e-x/leos-sub016/internal/home"
	"github.com/l-e-x/leos-sub016/internal/svcctx"
	"github.com/l-e-x/leos-sub016/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	localeFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "leostoc",
	Short: "Table-of-contents structure tools for legislative documents",
	Long: `Leostoc checks and edits the table-of-contents structure of legislative
documents (bills, annexes, explanatory memoranda) against the nesting rules
of their template.

It can:
  - List and show the structure grammar of each template
  - Answer whether an element may be dropped at a given place
  - Validate a stored document structure
  - Render display labels ("Article 3", "Annex II", "second paragraph")
  - Move, insert and remove elements with every edit validated`,
	Version:           version.GitRelease,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.leos/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "leostoc home directory (default: ~/.leos)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json or text",
	)
	rootCmd.PersistentFlags().StringVar(
		&localeFlag, "locale", "", "label locale (default: locale.default from config)",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(grammarCmd)
	rootCmd.AddCommand(placeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(removeCmd)
}

// setupServices loads configuration, builds the logger and the grammar
// registry, and attaches them to the command context.
func setupServices(cmd *cobra.Command, args []string) error {
	if _, err := api.ParseOutputFormat(outputFormat); err != nil {
		return err
	}

	h, err := home.New(homeDir)
	if err != nil {
		return err
	}

	cm, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return err
	}
	cfg := cm.Get()

	// Logs go to stderr so command output stays parseable.
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	services := newServices(h, cm, logger)
	grammar.InitGlobal(services.Grammars)

	logger.Debug("services ready", "home", h.Path(), "config", cm.ConfigFile())
	cmd.SetContext(svcctx.WithServices(cmd.Context(), services))
	return nil
}

// newServices builds the grammar registry over the configured template
// directory and keeps it in step with the config file: when templates.dir
// changes, the registry is reset onto the new directory.
func newServices(h *home.Dir, cm *config.Manager, logger *slog.Logger) *svcctx.Services {
	cfg := cm.Get()
	registry := grammar.NewRegistry(logger, templateSources(h, cfg)...)

	current := cfg.TemplatesDir(h.TemplatesPath())
	var mu sync.Mutex
	cm.OnChange(func(cfg *config.Config) {
		dir := cfg.TemplatesDir(h.TemplatesPath())
		mu.Lock()
		defer mu.Unlock()
		if dir == current {
			return
		}
		current = dir
		registry.Reset(templateSources(h, cfg)...)
		logger.Info("template directory changed", "dir", dir)
	})
	if cm.ConfigFile() != "" {
		cm.WatchConfig()
	}

	return &svcctx.Services{
		Config:   cm,
		Grammars: registry,
		Logger:   logger,
		Home:     h,
	}
}

// templateSources returns the override directory, when present, ahead of
// the built-in definitions.
func templateSources(h *home.Dir, cfg *config.Config) []fs.FS {
	var sources []fs.FS
	if overrides := h.Templates(cfg.TemplatesDir(h.TemplatesPath())); overrides != nil {
		sources = append(sources, overrides)
	}
	return append(sources, grammar.Builtin())
}

// printer returns a printer for the --output flag on the command's stdout.
func printer(cmd *cobra.Command) *api.Printer {
	format, err := api.ParseOutputFormat(outputFormat)
	if err != nil {
		format = api.DefaultOutput
	}
	return api.NewPrinter(cmd.OutOrStdout(), format)
}

// locale returns the --locale flag or the configured default.
func locale(cmd *cobra.Command) string {
	if localeFlag != "" {
		return localeFlag
	}
	if cm := svcctx.ConfigFrom(cmd.Context()); cm != nil {
		return cm.Get().Locale.Default
	}
	return ""
}

// defaultTemplate returns the configured template for documents that do
// not name one.
func defaultTemplate(cmd *cobra.Command) string {
	if cm := svcctx.ConfigFrom(cmd.Context()); cm != nil {
		return cm.Get().Templates.Default
	}
	return config.DefaultConfig().Templates.Default
}

// resolveDocument maps an argument to a document file: an existing path is
// used as is, anything else is looked up by id in the home documents
// directory.
func resolveDocument(cmd *cobra.Command, arg string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return arg, nil
	}
	if h := svcctx.HomeFrom(cmd.Context()); h != nil {
		p := h.DocumentPath(arg)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("document not found: %s", arg)
}
