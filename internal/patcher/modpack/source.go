package modpack

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/interfaces"
)

// normalize はパッケージ内の名前を "/" 区切りの相対パスにします
func normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	return strings.TrimSuffix(path.Clean("/" + name)[1:], "/")
}

// ZipSource はzipアーカイブのMODパッケージです
type ZipSource struct {
	name  string
	files map[string]*zip.File
	dirs  map[string]bool
}

// OpenZipBytes はメモリ上のzipデータをMODパッケージとして開きます
func OpenZipBytes(name string, data []byte) (*ZipSource, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenPackage, name, err)
	}
	return newZipSource(name, zr), nil
}

func newZipSource(name string, zr *zip.Reader) *ZipSource {
	src := &ZipSource{
		name:  name,
		files: make(map[string]*zip.File),
		dirs:  make(map[string]bool),
	}
	for _, f := range zr.File {
		n := normalize(f.Name)
		if n == "" {
			continue
		}
		if f.FileInfo().IsDir() {
			src.dirs[n] = true
		} else {
			src.files[n] = f
		}
		// 明示的なディレクトリエントリがないzipもある
		for dir := path.Dir(n); dir != "." && dir != "/"; dir = path.Dir(dir) {
			src.dirs[dir] = true
		}
	}
	return src
}

// Name はパッケージ名を返します
func (s *ZipSource) Name() string {
	return s.name
}

// FileExists はファイルが存在するか確認します
func (s *ZipSource) FileExists(name string) bool {
	_, ok := s.files[normalize(name)]
	return ok
}

// DirExists はディレクトリが存在するか確認します
func (s *ZipSource) DirExists(name string) bool {
	return s.dirs[normalize(name)]
}

// ReadFile はファイルを読み込みます
func (s *ZipSource) ReadFile(name string) ([]byte, error) {
	f, ok := s.files[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Close は何もしません。zipの中身はメモリ上にあります。
func (s *ZipSource) Close() error {
	return nil
}

// DirSource はフォルダのMODパッケージです
type DirSource struct {
	root string
	fs   interfaces.FileSystem
}

// OpenDir はフォルダのMODパッケージを開きます
func OpenDir(fs interfaces.FileSystem, root string) (*DirSource, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenPackage, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrOpenPackage, root)
	}
	return &DirSource{root: root, fs: fs}, nil
}

func (s *DirSource) join(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(normalize(name)))
}

// Name はパッケージ名を返します
func (s *DirSource) Name() string {
	return filepath.Base(s.root)
}

// FileExists はファイルが存在するか確認します
func (s *DirSource) FileExists(name string) bool {
	info, err := s.fs.Stat(s.join(name))
	return err == nil && !info.IsDir()
}

// DirExists はディレクトリが存在するか確認します
func (s *DirSource) DirExists(name string) bool {
	info, err := s.fs.Stat(s.join(name))
	return err == nil && info.IsDir()
}

// ReadFile はファイルを読み込みます
func (s *DirSource) ReadFile(name string) ([]byte, error) {
	if !s.FileExists(name) {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, name)
	}
	return s.fs.ReadFile(s.join(name))
}

// Close は何もしません
func (s *DirSource) Close() error {
	return nil
}

// Open はMODパッケージを開きます。folder が true の場合はフォルダとして開きます。
func Open(fs interfaces.FileSystem, filename string, folder bool) (interfaces.PackageSource, error) {
	if folder {
		return OpenDir(fs, filename)
	}
	data, err := fs.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenPackage, filename, err)
	}
	return OpenZipBytes(filepath.Base(filename), data)
}
