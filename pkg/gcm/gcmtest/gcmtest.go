// Package gcmtest はテスト用の小さなディスクイメージを作成するためのパッケージです。
package gcmtest

import (
	"encoding/binary"
	"sort"
	"strings"
)

const (
	dolOffset   = 0x2460
	fileAlign   = 0x20
	fstAlign    = 0x20
	textAddress = 0x80003100
)

// MinimalDOL はテキストセクションを1つだけ持つ DOL を返します。
// テキストセクションは仮想アドレス 0x80003100 から size バイトです。
func MinimalDOL(size int) []byte {
	data := make([]byte, 0x100+size)
	binary.BigEndian.PutUint32(data[0x00:], 0x100)
	binary.BigEndian.PutUint32(data[0x48:], textAddress)
	binary.BigEndian.PutUint32(data[0x90:], uint32(size))
	return data
}

type dirNode struct {
	name     string
	dirs     []*dirNode
	files    []string
	contents map[string][]byte
}

func (d *dirNode) sub(name string) *dirNode {
	for _, s := range d.dirs {
		if s.name == name {
			return s
		}
	}
	s := &dirNode{name: name, contents: make(map[string][]byte)}
	d.dirs = append(d.dirs, s)
	return s
}

// Build はゲームID、DOL、files/ 以下のファイルからディスクイメージを作成します。
// ファイルはパス順に配置され、名前は ASCII である必要があります。
func Build(gameID string, dol []byte, files map[string][]byte) []byte {
	root := &dirNode{contents: make(map[string][]byte)}
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		parts := strings.Split(strings.TrimPrefix(p, "files/"), "/")
		d := root
		for _, part := range parts[:len(parts)-1] {
			d = d.sub(part)
		}
		name := parts[len(parts)-1]
		d.files = append(d.files, name)
		d.contents[name] = files[p]
	}

	// FST エントリの並び（ファイル、ディレクトリの順）
	type entry struct {
		dir     bool
		name    string
		parent  int
		next    int
		payload []byte
	}
	entries := []entry{{dir: true}}
	var walk func(d *dirNode, index int)
	walk = func(d *dirNode, index int) {
		for _, f := range d.files {
			entries = append(entries, entry{name: f, payload: d.contents[f]})
		}
		for _, s := range d.dirs {
			i := len(entries)
			entries = append(entries, entry{dir: true, name: s.name, parent: index})
			walk(s, i)
			entries[i].next = len(entries)
		}
	}
	walk(root, 0)
	entries[0].next = len(entries)

	var names []byte
	nameOffsets := make([]int, len(entries))
	for i, e := range entries[1:] {
		nameOffsets[i+1] = len(names)
		names = append(names, e.name...)
		names = append(names, 0)
	}
	fstSize := len(entries)*12 + len(names)
	fstOffset := align(dolOffset+len(dol), fstAlign)

	pos := align(fstOffset+fstSize, fileAlign)
	offsets := make([]int, len(entries))
	for i, e := range entries {
		if e.dir {
			continue
		}
		offsets[i] = pos
		pos = align(pos+len(e.payload), fileAlign)
	}

	img := make([]byte, pos)
	be := binary.BigEndian
	copy(img, gameID)
	be.PutUint32(img[0x420:], dolOffset)
	be.PutUint32(img[0x424:], uint32(fstOffset))
	be.PutUint32(img[0x428:], uint32(fstSize))
	be.PutUint32(img[0x42C:], uint32(fstSize))
	copy(img[dolOffset:], dol)

	fst := img[fstOffset:]
	for i, e := range entries {
		rec := fst[i*12:]
		if e.dir {
			be.PutUint32(rec, 1<<24|uint32(nameOffsets[i]))
			be.PutUint32(rec[4:], uint32(e.parent))
			be.PutUint32(rec[8:], uint32(e.next))
			continue
		}
		be.PutUint32(rec, uint32(nameOffsets[i]))
		be.PutUint32(rec[4:], uint32(offsets[i]))
		be.PutUint32(rec[8:], uint32(len(e.payload)))
		copy(img[offsets[i]:], e.payload)
	}
	copy(fst[len(entries)*12:], names)
	return img
}

func align(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}
