package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/audio"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/tables"
	"github.com/shiroemons/go-mkddpatcher/pkg/baa"
	"github.com/shiroemons/go-mkddpatcher/pkg/gcm"
	"github.com/shiroemons/go-mkddpatcher/pkg/rarc"
)

func newInspectCmd() *cobra.Command {
	var listFiles bool

	cmd := &cobra.Command{
		Use:   "inspect <disc> [archive]",
		Short: "Show disc information, or list the entries of an archive on the disc",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disc, err := gcm.Open(args[0])
			if err != nil {
				return err
			}
			defer disc.Close()

			w := cmd.OutOrStdout()
			if len(args) == 2 {
				return listArchive(w, disc, args[1])
			}

			tbl, err := tables.Load()
			if err != nil {
				return err
			}
			region, ok := tbl.Region(disc.GameID())
			fmt.Fprintf(w, "ゲームID: %s\n", disc.GameID())
			if ok {
				fmt.Fprintf(w, "地域: %s\n", region)
			} else {
				fmt.Fprintln(w, "地域: 不明")
			}
			if bank, err := disc.ReadFile(audio.BankPath); err == nil {
				fmt.Fprintf(w, "オーディオバンク拡張済み: %v\n", baa.IsPatched(bank))
			}

			if listFiles {
				listDisc(w, disc)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&listFiles, "list", "l", false, "list files")
	return cmd
}

// listDisc はディスク内のファイル一覧を表示します
func listDisc(w io.Writer, disc *gcm.Disc) {
	fmt.Fprintln(w, "ディスク内のファイル一覧:")
	fmt.Fprintln(w, "----------------------------")
	fmt.Fprintf(w, "%-48s %10s %10s\n", "ファイル名", "オフセット", "サイズ")
	fmt.Fprintln(w, "----------------------------")
	for _, f := range disc.Files() {
		fmt.Fprintf(w, "%-48s 0x%08X %10d\n", f.Path, f.Offset, f.Size)
	}
	fmt.Fprintln(w, "----------------------------")
}

// listArchive はディスク上の RARC アーカイブのエントリを表示します
func listArchive(w io.Writer, disc *gcm.Disc, path string) error {
	data, err := disc.ReadFile(path)
	if err != nil {
		return err
	}
	arc, err := rarc.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var walk func(d *rarc.Directory, prefix string)
	walk = func(d *rarc.Directory, prefix string) {
		for _, n := range d.Children() {
			switch n := n.(type) {
			case *rarc.File:
				fmt.Fprintf(w, "%-48s %10d\n", prefix+n.Name(), len(n.Data))
			case *rarc.Directory:
				fmt.Fprintf(w, "%s/\n", prefix+n.Name())
				walk(n, prefix+n.Name()+"/")
			}
		}
	}
	fmt.Fprintf(w, "%s/\n", arc.Root.Name())
	walk(arc.Root, arc.Root.Name()+"/")
	return nil
}
