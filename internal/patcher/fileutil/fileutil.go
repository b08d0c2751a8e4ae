package fileutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/interfaces"
)

// ExpandPackages はMODパッケージのパスの一覧を返します。
// フォルダモードでは各パスをパッケージのフォルダを含むディレクトリとして扱い、
// trackinfo.ini を持つサブディレクトリを名前順に返します。
func ExpandPackages(fs interfaces.FileSystem, paths []string, folderMode bool) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := fs.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrPackageNotFound, p, err)
		}
		if !folderMode {
			if info.IsDir() {
				return nil, fmt.Errorf("%w: %s", ErrUnexpectedDirectory, p)
			}
			out = append(out, p)
			continue
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, p)
		}

		// 選ばれたフォルダ自体がパッケージの場合
		if fs.FileExists(filepath.Join(p, "trackinfo.ini")) {
			out = append(out, p)
			continue
		}

		entries, err := fs.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadDirectory, err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			dir := filepath.Join(p, e.Name())
			if fs.FileExists(filepath.Join(dir, "trackinfo.ini")) {
				found = append(found, dir)
			}
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, p)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// SamePath は2つのパスが同じファイルを指すかどうかを返します
func SamePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// DefaultOutputPath は入力ディスクのパスから出力先の既定値を作成します
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_new" + ext
}
