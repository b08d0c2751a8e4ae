package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/app"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/config"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/fileutil"
)

func newPatchCmd() *cobra.Command {
	var (
		cfg          config.Config
		settingsPath string
	)

	cmd := &cobra.Command{
		Use:   "patch <disc> <package...>",
		Short: "Merge mod packages into a disc image",
		Long: `Merge one or more custom track packages (zip files, or folders with --folder)
into a copy of the disc image. The source disc is never modified.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InputPath = args[0]
			cfg.Packages = args[1:]

			if settingsPath == "" {
				if p, err := config.DefaultSettingsPath(); err == nil {
					settingsPath = p
				}
			}
			settings, err := config.LoadSettings(settingsPath)
			if err != nil {
				return err
			}
			cfg.Apply(settings, cmd.Flags().Changed)
			if cfg.OutputPath == "" {
				cfg.OutputPath = fileutil.DefaultOutputPath(cfg.InputPath)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			interactive := term.IsTerminal(int(os.Stdin.Fd()))
			callbacks := newTerminalCallbacks(os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr(), interactive, cfg.AssumeYes)
			a := app.NewWithOptions(&cfg, app.Options{Callbacks: callbacks})

			if err := a.Run(ctx); err != nil {
				if errors.Is(err, app.ErrCancelled) || errors.Is(err, context.Canceled) {
					fmt.Fprintln(cmd.ErrOrStderr(), "中止しました")
				}
				return errReported
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.OutputPath, "output", "o", "", "output disc image (default: <disc>_new.<ext>)")
	f.BoolVar(&cfg.FolderMode, "folder", false, "treat packages as folders (or folders of package folders)")
	f.StringVar(&cfg.MinimapTable, "minimap-table", "", "minimap address table JSON (required: no addresses are built in)")
	f.BoolVarP(&cfg.AssumeYes, "yes", "y", false, "answer every confirmation with yes")
	f.BoolVarP(&cfg.DebugMode, "debug", "d", false, "debug mode (show more info)")
	f.StringVar(&settingsPath, "config", "", "settings file (default: <user config dir>/mkddpatcher/config.toml)")
	return cmd
}
