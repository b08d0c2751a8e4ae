// Package gcm はゲームキューブのディスクイメージ（GCM）を仮想ファイルシステムとして扱うパッケージです。
//
// Disc は元のイメージを読み取り専用で開き、書き換えたファイルをオーバーレイに保持します。
// Export は元のイメージをそのままコピーしたうえで、オーバーレイのファイルと再構築した
// FST を末尾に追加し、ヘッダのオフセットを書き換えた新しいイメージを出力します。
package gcm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/shiroemons/go-mkddpatcher/pkg/binio"
	"github.com/shiroemons/go-mkddpatcher/pkg/dol"
)

const (
	// FileAlignment は追加するファイルを配置する境界です
	FileAlignment = 0x8000

	// HeaderSize は boot.bin のサイズです
	HeaderSize = 0x440

	bi2Offset        = 0x440
	bi2Size          = 0x2000
	apploaderOffset  = 0x2440
	apploaderHdrSize = 0x20

	dolOffsetAt  = 0x420
	fstOffsetAt  = 0x424
	fstSizeAt    = 0x428
	maxFSTSizeAt = 0x42C

	filesPrefix = "files/"
	sysPrefix   = "sys/"

	// MainDOL は書き換え可能な唯一のシステムファイルです
	MainDOL = "sys/main.dol"
)

// FileInfo はディスク上のファイルの情報です
type FileInfo struct {
	Path    string
	Offset  uint32
	Size    uint32
	Changed bool
}

type region struct {
	offset uint32
	size   uint32
}

// Disc は開いているディスクイメージです
type Disc struct {
	r      io.ReaderAt
	size   int64
	closer io.Closer

	header [HeaderSize]byte
	sys    map[string]region
	root   *node

	changed map[string][]byte
}

// Open はパスのディスクイメージを開きます
func Open(path string) (*Disc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	d, err := OpenReader(f, st.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	d.closer = f
	return d, nil
}

// OpenReader は r からディスクイメージを読み込みます
func OpenReader(r io.ReaderAt, size int64) (*Disc, error) {
	d := &Disc{r: r, size: size, changed: make(map[string][]byte)}

	if _, err := r.ReadAt(d.header[:], 0); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidImage, err)
	}
	be := binary.BigEndian
	dolOff := be.Uint32(d.header[dolOffsetAt:])
	fstOff := be.Uint32(d.header[fstOffsetAt:])
	fstSize := be.Uint32(d.header[fstSizeAt:])

	if int64(fstOff)+int64(fstSize) > size || int64(dolOff)+dol.HeaderSize > size {
		return nil, fmt.Errorf("%w: header offsets exceed image size", ErrInvalidImage)
	}

	var apploader [apploaderHdrSize]byte
	if _, err := r.ReadAt(apploader[:], apploaderOffset); err != nil {
		return nil, fmt.Errorf("%w: apploader: %w", ErrInvalidImage, err)
	}
	apploaderSize := apploaderHdrSize + be.Uint32(apploader[0x14:]) + be.Uint32(apploader[0x18:])

	dolHeader := make([]byte, dol.HeaderSize)
	if _, err := r.ReadAt(dolHeader, int64(dolOff)); err != nil {
		return nil, fmt.Errorf("%w: main.dol: %w", ErrInvalidImage, err)
	}
	dolSize, err := dol.Size(dolHeader)
	if err != nil {
		return nil, err
	}

	d.sys = map[string]region{
		"sys/boot.bin":      {0, HeaderSize},
		"sys/bi2.bin":       {bi2Offset, bi2Size},
		"sys/apploader.img": {apploaderOffset, apploaderSize},
		MainDOL:             {dolOff, uint32(dolSize)},
		"sys/fst.bin":       {fstOff, fstSize},
	}

	fst := make([]byte, fstSize)
	if _, err := r.ReadAt(fst, int64(fstOff)); err != nil {
		return nil, fmt.Errorf("%w: fst: %w", ErrInvalidImage, err)
	}
	if d.root, err = parseFST(fst); err != nil {
		return nil, err
	}
	return d, nil
}

// Close はディスクイメージを閉じます
func (d *Disc) Close() error {
	d.r = nil
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}

// GameID はヘッダ先頭の4文字のゲームIDを返します
func (d *Disc) GameID() string {
	return string(d.header[:4])
}

// lookup は files/ 以下のパスに対応するノードを探します。大文字小文字は区別しません。
func (d *Disc) lookup(path string) (*node, bool) {
	rest, ok := strings.CutPrefix(path, filesPrefix)
	if !ok {
		return nil, false
	}
	n := d.root
	for _, part := range strings.Split(rest, "/") {
		if !n.dir {
			return nil, false
		}
		if n = n.child(part); n == nil {
			return nil, false
		}
	}
	return n, true
}

// key はオーバーレイのキーを返します
func key(path string) string {
	return strings.ToLower(path)
}

// FileExists はファイルが存在するかどうかを返します
func (d *Disc) FileExists(path string) bool {
	if _, ok := d.changed[key(path)]; ok {
		return true
	}
	if _, ok := d.sys[path]; ok {
		return true
	}
	n, ok := d.lookup(path)
	return ok && !n.dir
}

// ReadFile はファイルの内容を返します。書き換え済みのファイルはオーバーレイの内容を返します。
func (d *Disc) ReadFile(path string) ([]byte, error) {
	if data, ok := d.changed[key(path)]; ok {
		return bytes.Clone(data), nil
	}
	if d.r == nil {
		return nil, ErrClosed
	}

	var reg region
	if r, ok := d.sys[path]; ok {
		reg = r
	} else if n, ok := d.lookup(path); ok && !n.dir {
		reg = region{n.offset, n.size}
	} else {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	data := make([]byte, reg.size)
	if _, err := d.r.ReadAt(data, int64(reg.offset)); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// WriteFile はファイルの内容をオーバーレイに書き込みます。存在しないパスは新規作成されます。
func (d *Disc) WriteFile(path string, data []byte) error {
	switch {
	case path == MainDOL:
	case strings.HasPrefix(path, sysPrefix):
		return fmt.Errorf("%w: %s", ErrReadOnly, path)
	case strings.HasPrefix(path, filesPrefix) && len(path) > len(filesPrefix) && !strings.HasSuffix(path, "/"):
		if err := d.ensureFile(path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	d.changed[key(path)] = bytes.Clone(data)
	return nil
}

// ensureFile は path のファイルノードを必要に応じてディレクトリごと作成します
func (d *Disc) ensureFile(path string) error {
	parts := strings.Split(strings.TrimPrefix(path, filesPrefix), "/")
	if slices.Contains(parts, "") {
		return fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	n := d.root
	for i, part := range parts {
		last := i == len(parts)-1
		c := n.child(part)
		if c == nil {
			c = &node{name: part, dir: !last, parent: n}
			n.children = append(n.children, c)
		}
		if c.dir == last {
			return fmt.Errorf("%w: %s conflicts with an existing entry", ErrInvalidPath, path)
		}
		n = c
	}
	return nil
}

// ChangedFiles は書き換えたファイルのパスを並べて返します
func (d *Disc) ChangedFiles() []string {
	paths := make([]string, 0, len(d.changed))
	if _, ok := d.changed[key(MainDOL)]; ok {
		paths = append(paths, MainDOL)
	}
	d.walk(func(n *node) {
		if _, ok := d.changed[key(n.path())]; ok {
			paths = append(paths, n.path())
		}
	})
	sort.Strings(paths)
	return paths
}

// walk はすべてのファイルノードを FST の順に訪れます
func (d *Disc) walk(fn func(*node)) {
	var rec func(n *node)
	rec = func(n *node) {
		for _, c := range n.children {
			if c.dir {
				rec(c)
				continue
			}
			fn(c)
		}
	}
	rec(d.root)
}

// Files はシステムファイルと files/ 以下のすべてのファイルを返します
func (d *Disc) Files() []FileInfo {
	var infos []FileInfo
	for _, p := range []string{"sys/boot.bin", "sys/bi2.bin", "sys/apploader.img", MainDOL, "sys/fst.bin"} {
		reg := d.sys[p]
		info := FileInfo{Path: p, Offset: reg.offset, Size: reg.size}
		if data, ok := d.changed[key(p)]; ok {
			info.Changed = true
			info.Size = uint32(len(data))
		}
		infos = append(infos, info)
	}
	d.walk(func(n *node) {
		info := FileInfo{Path: n.path(), Offset: n.offset, Size: n.size}
		if data, ok := d.changed[key(info.Path)]; ok {
			info.Changed = true
			info.Size = uint32(len(data))
		}
		infos = append(infos, info)
	})
	return infos
}

// WriteImage は新しいディスクイメージを w に書き込み、書き込んだサイズを返します
func (d *Disc) WriteImage(w io.WriterAt) (int64, error) {
	if d.r == nil {
		return 0, ErrClosed
	}
	if _, err := io.Copy(&offsetWriter{w: w}, io.NewSectionReader(d.r, 0, d.size)); err != nil {
		return 0, fmt.Errorf("copy source image: %w", err)
	}

	pos := int64(binio.Align(int(d.size), FileAlignment))
	placed := make(map[string]region)
	for _, p := range d.ChangedFiles() {
		data := d.changed[key(p)]
		if pos+int64(len(data)) > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %s at 0x%X", ErrImageTooLarge, p, pos)
		}
		if _, err := w.WriteAt(data, pos); err != nil {
			return 0, fmt.Errorf("write %s: %w", p, err)
		}
		placed[key(p)] = region{uint32(pos), uint32(len(data))}
		pos = int64(binio.Align(int(pos)+len(data), FileAlignment))
	}

	fst, err := buildFST(d.root, func(n *node) (uint32, uint32) {
		if reg, ok := placed[key(n.path())]; ok {
			return reg.offset, reg.size
		}
		return n.offset, n.size
	})
	if err != nil {
		return 0, err
	}
	if pos+int64(len(fst)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: fst at 0x%X", ErrImageTooLarge, pos)
	}
	if _, err := w.WriteAt(fst, pos); err != nil {
		return 0, fmt.Errorf("write fst: %w", err)
	}
	end := pos + int64(len(fst))

	header := make([]byte, 16)
	be := binary.BigEndian
	dolOff := d.sys[MainDOL].offset
	if reg, ok := placed[key(MainDOL)]; ok {
		dolOff = reg.offset
	}
	maxFST := be.Uint32(d.header[maxFSTSizeAt:])
	if uint32(len(fst)) > maxFST {
		maxFST = uint32(len(fst))
	}
	be.PutUint32(header[0:], dolOff)
	be.PutUint32(header[4:], uint32(pos))
	be.PutUint32(header[8:], uint32(len(fst)))
	be.PutUint32(header[12:], maxFST)
	if _, err := w.WriteAt(header, dolOffsetAt); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	return end, nil
}

// Export は新しいディスクイメージを dst に書き出します。
// 一時ファイルへの書き込みが完了してから dst に置き換えるため、失敗しても dst は変更されません。
func (d *Disc) Export(dst string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := d.WriteImage(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}

// offsetWriter は io.WriterAt を先頭から順に書き込む io.Writer として扱います
type offsetWriter struct {
	w   io.WriterAt
	off int64
}

func (o *offsetWriter) Write(p []byte) (int, error) {
	n, err := o.w.WriteAt(p, o.off)
	o.off += int64(n)
	return n, err
}
