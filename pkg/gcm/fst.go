package gcm

import (
	"fmt"
	"strings"

	"github.com/shiroemons/go-mkddpatcher/pkg/binio"
	"github.com/shiroemons/go-mkddpatcher/pkg/sjis"
)

const fstEntrySize = 12

// node は FST のディレクトリまたはファイルです
type node struct {
	name     string
	dir      bool
	parent   *node
	children []*node

	// ファイルのみ
	offset uint32
	size   uint32
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}

// path は files/ から始まる仮想パスを返します
func (n *node) path() string {
	if n.parent == nil {
		return filesPrefix[:len(filesPrefix)-1]
	}
	return n.parent.path() + "/" + n.name
}

// parseFST は FST を読み込み、ルートディレクトリを返します
func parseFST(data []byte) (*node, error) {
	r := binio.NewReader(data)
	if len(data) < fstEntrySize || data[0] != 1 {
		return nil, fmt.Errorf("%w: FST root is not a directory", ErrInvalidImage)
	}
	if err := r.Seek(8); err != nil {
		return nil, err
	}
	count, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	stringsAt := int(count) * fstEntrySize
	if count == 0 || stringsAt > len(data) {
		return nil, fmt.Errorf("%w: FST entry count %d", ErrInvalidImage, count)
	}

	root := &node{dir: true}
	type frame struct {
		dir *node
		end uint32
	}
	stack := []frame{{dir: root, end: count}}

	for i := uint32(1); i < count; i++ {
		for len(stack) > 1 && i >= stack[len(stack)-1].end {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]

		if err := r.Seek(int(i) * fstEntrySize); err != nil {
			return nil, err
		}
		isDir, _ := r.Uint8()
		nameOff, _ := r.Uint24()
		a, _ := r.Uint32()
		b, err := r.Uint32()
		if err != nil {
			return nil, err
		}

		raw, err := r.CStringAt(stringsAt + int(nameOff))
		if err != nil {
			return nil, fmt.Errorf("%w: FST entry %d name: %w", ErrInvalidImage, i, err)
		}
		name, err := sjis.Decode(raw)
		if err != nil {
			return nil, err
		}

		n := &node{name: name, dir: isDir != 0, parent: top.dir}
		top.dir.children = append(top.dir.children, n)
		if n.dir {
			if b <= i || b > count {
				return nil, fmt.Errorf("%w: FST directory %q ends at %d", ErrInvalidImage, name, b)
			}
			stack = append(stack, frame{dir: n, end: b})
			continue
		}
		n.offset, n.size = a, b
	}
	return root, nil
}

// buildFST はツリーから FST を作成します。ファイルの位置は locate が返します。
func buildFST(root *node, locate func(*node) (uint32, uint32)) ([]byte, error) {
	var order []*node
	var walk func(n *node)
	walk = func(n *node) {
		order = append(order, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)

	index := make(map[*node]uint32, len(order))
	for i, n := range order {
		index[n] = uint32(i)
	}
	// ディレクトリの next は最後の子孫の次の番号
	next := make(map[*node]uint32)
	var last func(n *node) uint32
	last = func(n *node) uint32 {
		end := index[n]
		for _, c := range n.children {
			if e := last(c); e > end {
				end = e
			}
		}
		if n.dir {
			next[n] = end + 1
		}
		return end
	}
	last(root)

	var names []byte
	w := binio.NewWriter()
	for _, n := range order {
		nameOff := uint32(0)
		if n != root {
			raw, err := sjis.Encode(n.name)
			if err != nil {
				return nil, err
			}
			nameOff = uint32(len(names))
			names = append(names, raw...)
			names = append(names, 0)
		}

		if n.dir {
			parent := uint32(0)
			if n.parent != nil {
				parent = index[n.parent]
			}
			w.Uint32(1<<24 | nameOff)
			w.Uint32(parent)
			w.Uint32(next[n])
			continue
		}
		off, size := locate(n)
		w.Uint32(nameOff)
		w.Uint32(off)
		w.Uint32(size)
	}
	w.Write(names)
	return w.Bytes(), nil
}
