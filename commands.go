package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"refactorizer/internal/config"
	"refactorizer/internal/git"
	"refactorizer/internal/logging"
	"refactorizer/internal/model"
	"refactorizer/internal/provider"
	"refactorizer/internal/refactor"
	"refactorizer/internal/tui"
)

type rootFlags struct {
	rename     bool
	inline     string
	configPath string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "refactorizer <file:line:col[-line:col]>",
		Short: "Interactively refactor Go code at a cursor or selection",
		Long: `refactorizer asks gopls and gofmt which refactorings apply at a location,
lets you pick one, fill in its parameters, preview the diff and apply it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.OutOrStdout(), args[0], flags)
		},
	}
	root.Flags().BoolVar(&flags.rename, "rename", false, "go straight to renaming the symbol at the cursor")
	root.Flags().StringVar(&flags.inline, "inline", "", "open the freeform refactoring with this id without the pick list")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <repo>/"+config.FileName+")")

	root.AddCommand(newListCmd(&flags))
	return root
}

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list <file:line:col[-line:col]>",
		Short: "Print the refactorings available at a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, cfg, err := setup(args[0], flags.configPath)
			if err != nil {
				return err
			}
			p := provider.Detect(loc.Editor, providerOptions(cfg))
			if p == nil {
				return tui.ErrNoProvider
			}
			available, err := p.Refactorings(context.Background(), loc.Editor, loc.Range)
			if err != nil {
				return err
			}
			return printRefactorings(cmd.OutOrStdout(), available)
		},
	}
}

func printRefactorings(w io.Writer, available []model.Refactoring) error {
	if len(available) == 0 {
		_, err := fmt.Fprintln(w, "no refactorings available")
		return err
	}
	for _, r := range available {
		state := ""
		if r.Disabled {
			state = " (disabled)"
		}
		if _, err := fmt.Fprintf(w, "%-9s %-28s %s%s\n", r.Kind, r.ID, r.Title(), state); err != nil {
			return err
		}
	}
	return nil
}

// setup parses the location and loads config from the repository holding it.
func setup(location, configPath string) (model.Location, config.Config, error) {
	loc, err := model.ParseLocation(location)
	if err != nil {
		return model.Location{}, config.Config{}, err
	}
	root, err := git.RepoRoot(loc.Editor.Dir)
	if err != nil {
		root = loc.Editor.Dir
	}
	cfg, err := config.Load(configPath, root)
	if err != nil {
		return model.Location{}, config.Config{}, err
	}
	return loc, cfg, nil
}

func providerOptions(cfg config.Config) provider.Options {
	return provider.Options{Gopls: cfg.Gopls, Gofmt: cfg.Gofmt, Timeout: cfg.Timeout}
}

func runSession(out io.Writer, location string, flags rootFlags) error {
	loc, cfg, err := setup(location, flags.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Close()

	ui := refactor.UIGeneric
	if flags.rename {
		ui = refactor.UIRename
	}
	logger.Info("starting session", "file", loc.Editor.Path, "range", loc.Range.String(), "ui", ui, "inline", flags.inline)

	p := tea.NewProgram(tui.New(tui.Options{
		Location: loc,
		UI:       ui,
		InlineID: flags.inline,
		Config:   cfg,
		Logger:   logger,
	}), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(tui.Model)
	if !ok {
		return fmt.Errorf("unexpected model type %T", final)
	}
	if m.Err() != nil {
		return m.Err()
	}
	fmt.Fprintln(out, m.Summary())
	return nil
}
