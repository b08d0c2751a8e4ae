// Package rarc はゲームのコースやシーンデータで使われる RARC アーカイブを読み書きするためのパッケージです。
//
// アーカイブは1つのルートディレクトリを持つ順序付きの木構造として表現されます。
// ディレクトリ内のエントリの順序はそのままシリアライズ後のバイト配置になるため、
// 名前による検索と位置による走査の両方を提供します。
//
// 基本的な使い方:
//
//	arc, err := rarc.Parse(data)
//	if err != nil {
//	    return err
//	}
//	arc.SetRootName("luigi")
//	out, err := arc.MarshalUncompressed()
package rarc

import (
	"fmt"
	"strings"

	"github.com/shiroemons/go-mkddpatcher/pkg/binio"
)

// Alignment はセクション間およびファイルデータ後のパディング単位です
const Alignment = 32

// FlagFile などはエントリの種別フラグです
const (
	FlagFile       uint8 = 0x01
	FlagDirectory  uint8 = 0x02
	FlagCompressed uint8 = 0x04
	FlagPreloadRAM uint8 = 0x10

	defaultFileFlags = FlagFile | FlagPreloadRAM
)

// Align は n を Alignment の倍数に切り上げます
func Align(n int) int {
	return binio.Align(n, Alignment)
}

// Pad は w の長さを Alignment の倍数まで0で埋めます
func Pad(w *binio.Writer) {
	w.Pad(Alignment)
}

// Node はディレクトリ内のエントリ（*File または *Directory）です
type Node interface {
	Name() string
	setName(name string)
}

// File はアーカイブ内のファイルです
type File struct {
	name  string
	Data  []byte
	Flags uint8
}

// NewFile は新しい File を作成します
func NewFile(name string, data []byte) *File {
	return &File{name: name, Data: data, Flags: defaultFileFlags}
}

// Name はファイル名を返します
func (f *File) Name() string { return f.name }

func (f *File) setName(name string) { f.name = name }

// Directory は順序付きの子エントリを持つディレクトリです
type Directory struct {
	name     string
	children []Node
	index    map[string]int
}

// NewDirectory は新しい Directory を作成します
func NewDirectory(name string) *Directory {
	return &Directory{name: name, index: make(map[string]int)}
}

// Name はディレクトリ名を返します
func (d *Directory) Name() string { return d.name }

func (d *Directory) setName(name string) { d.name = name }

// Len は子エントリの数を返します
func (d *Directory) Len() int {
	return len(d.children)
}

// At は i 番目の子エントリを返します
func (d *Directory) At(i int) Node {
	return d.children[i]
}

// Children は子エントリの一覧を順序通りに返します
func (d *Directory) Children() []Node {
	out := make([]Node, len(d.children))
	copy(out, d.children)
	return out
}

// Lookup は名前が完全一致する子エントリを返します
func (d *Directory) Lookup(name string) (Node, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.children[i], true
}

// lookupFold は大文字小文字を区別せずに子エントリを探します
func (d *Directory) lookupFold(name string) (Node, bool) {
	if n, ok := d.Lookup(name); ok {
		return n, true
	}
	for _, n := range d.children {
		if strings.EqualFold(n.Name(), name) {
			return n, true
		}
	}
	return nil, false
}

// Add は子エントリを末尾に追加します
func (d *Directory) Add(n Node) error {
	if _, exists := d.index[n.Name()]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateName, d.name, n.Name())
	}
	d.index[n.Name()] = len(d.children)
	d.children = append(d.children, n)
	return nil
}

// Rename は子エントリの名前を位置を保ったまま変更します
func (d *Directory) Rename(oldName, newName string) error {
	i, ok := d.index[oldName]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, d.name, oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, exists := d.index[newName]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateName, d.name, newName)
	}
	d.children[i].setName(newName)
	delete(d.index, oldName)
	d.index[newName] = i
	return nil
}

// Remove は子エントリを削除します。削除した場合 true を返します
func (d *Directory) Remove(name string) bool {
	i, ok := d.index[name]
	if !ok {
		return false
	}
	d.children = append(d.children[:i], d.children[i+1:]...)
	d.reindex()
	return true
}

func (d *Directory) reindex() {
	d.index = make(map[string]int, len(d.children))
	for i, n := range d.children {
		d.index[n.Name()] = i
	}
}

// Archive は RARC アーカイブの木構造です
type Archive struct {
	Root *Directory
}

// New は指定した名前のルートディレクトリを持つ空のアーカイブを作成します
func New(rootName string) *Archive {
	return &Archive{Root: NewDirectory(rootName)}
}

// SetRootName はルートディレクトリの名前を変更します
func (a *Archive) SetRootName(name string) {
	a.Root.setName(name)
}

// Find は "root/dir/file" 形式のパスに一致するエントリを返します。
// 先頭の要素はルートディレクトリ名で、比較は大文字小文字を区別しません。
func (a *Archive) Find(path string) (Node, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || !strings.EqualFold(parts[0], a.Root.Name()) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	var cur Node = a.Root
	for _, p := range parts[1:] {
		dir, ok := cur.(*Directory)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		next, ok := dir.lookupFold(p)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		cur = next
	}
	return cur, nil
}

// ReadFile はパスに一致するファイルの内容を返します
func (a *Archive) ReadFile(path string) ([]byte, error) {
	n, err := a.Find(path)
	if err != nil {
		return nil, err
	}
	f, ok := n.(*File)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}
	return f.Data, nil
}

// WriteFile はパスに一致するファイルの内容を置き換えます。
// ファイルが存在しない場合は親ディレクトリの末尾に新しく作成します。
func (a *Archive) WriteFile(path string, data []byte) error {
	if n, err := a.Find(path); err == nil {
		f, ok := n.(*File)
		if !ok {
			return fmt.Errorf("%w: %s is a directory", ErrDuplicateName, path)
		}
		f.Data = data
		return nil
	}

	trimmed := strings.Trim(path, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	parent, err := a.Find(trimmed[:i])
	if err != nil {
		return err
	}
	dir, ok := parent.(*Directory)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, trimmed[:i])
	}
	return dir.Add(NewFile(trimmed[i+1:], data))
}
