package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/config"
)

// errReported はエラーを既に表示済みであることを示します
var errReported = errors.New("reported")

func main() {
	root := &cobra.Command{
		Use:           "mkddpatcher",
		Short:         "Patch custom tracks into a Mario Kart: Double Dash!! disc image",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newPatchCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		}
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mkddpatcher %s\n", config.Version)
		},
	}
}
