package rarc

import (
	"fmt"

	"github.com/shiroemons/go-mkddpatcher/pkg/binio"
	"github.com/shiroemons/go-mkddpatcher/pkg/sjis"
)

// nameHash はゲームがエントリ名の比較に使うハッシュ値を計算します
func nameHash(name []byte) uint16 {
	var h uint16
	for _, c := range name {
		h = h*3 + uint16(c)
	}
	return h
}

// nodeID はノードの4文字IDを作成します
func nodeID(name []byte, root bool) [4]byte {
	id := [4]byte{' ', ' ', ' ', ' '}
	if root {
		copy(id[:], "ROOT")
		return id
	}
	for i := 0; i < 4 && i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		id[i] = c
	}
	return id
}

// stringTable は重複を除いた名前の文字列テーブルです
type stringTable struct {
	buf     []byte
	offsets map[string]uint32
}

func newStringTable() *stringTable {
	t := &stringTable{offsets: make(map[string]uint32)}
	t.add([]byte("."))
	t.add([]byte(".."))
	return t
}

func (t *stringTable) add(name []byte) uint32 {
	if off, ok := t.offsets[string(name)]; ok {
		return off
	}
	off := uint32(len(t.buf))
	t.offsets[string(name)] = off
	t.buf = append(t.buf, name...)
	t.buf = append(t.buf, 0)
	return off
}

// maxEntries はエントリ数とファイルIDを16ビットで表せる上限です
const maxEntries = 0xFFFF

type outEntry struct {
	id         uint16
	hash       uint16
	flags      uint8
	nameOffset uint32
	dataOffset uint32
	size       uint32
	file       *File
}

type outNode struct {
	id         [4]byte
	nameOffset uint32
	hash       uint16
	entryCount uint16
	firstEntry uint32
}

// MarshalUncompressed はアーカイブを非圧縮の RARC バイト列に変換します
func (a *Archive) MarshalUncompressed() ([]byte, error) {
	// ディレクトリは幅優先でノード番号を割り当てる
	dirs := []*Directory{a.Root}
	parents := map[*Directory]uint32{a.Root: noParent}
	nodeIndex := map[*Directory]uint32{a.Root: 0}
	for i := 0; i < len(dirs); i++ {
		for _, child := range dirs[i].children {
			if sub, ok := child.(*Directory); ok {
				nodeIndex[sub] = uint32(len(dirs))
				parents[sub] = uint32(i)
				dirs = append(dirs, sub)
			}
		}
	}

	strs := newStringTable()
	nodes := make([]outNode, 0, len(dirs))
	var entries []outEntry
	dataLen := 0

	for i, dir := range dirs {
		rawName, err := sjis.Encode(dir.name)
		if err != nil {
			return nil, err
		}
		node := outNode{
			id:         nodeID(rawName, i == 0),
			nameOffset: strs.add(rawName),
			hash:       nameHash(rawName),
			firstEntry: uint32(len(entries)),
		}

		for _, child := range dir.children {
			raw, err := sjis.Encode(child.Name())
			if err != nil {
				return nil, err
			}
			e := outEntry{hash: nameHash(raw), nameOffset: strs.add(raw)}
			switch c := child.(type) {
			case *File:
				e.id = uint16(len(entries))
				e.flags = c.Flags
				if e.flags == 0 {
					e.flags = defaultFileFlags
				}
				e.dataOffset = uint32(dataLen)
				e.size = uint32(len(c.Data))
				e.file = c
				dataLen = Align(dataLen + len(c.Data))
			case *Directory:
				e.id = 0xFFFF
				e.flags = FlagDirectory
				e.dataOffset = nodeIndex[c]
				e.size = nodeSize
			}
			entries = append(entries, e)
		}

		entries = append(entries,
			outEntry{id: 0xFFFF, hash: nameHash([]byte(".")), flags: FlagDirectory, nameOffset: 0, dataOffset: uint32(i), size: nodeSize},
			outEntry{id: 0xFFFF, hash: nameHash([]byte("..")), flags: FlagDirectory, nameOffset: 2, dataOffset: parents[dir], size: nodeSize},
		)
		if len(entries) > maxEntries {
			return nil, fmt.Errorf("%w: %d entries after %s", ErrTooManyEntries, len(entries), dir.name)
		}
		node.entryCount = uint16(len(entries) - int(node.firstEntry))
		nodes = append(nodes, node)
	}

	nodesStart := headerSize + infoSize
	entriesStart := Align(nodesStart + len(nodes)*nodeSize)
	stringsStart := Align(entriesStart + len(entries)*entrySize)
	stringsLen := Align(len(strs.buf))
	dataStart := stringsStart + stringsLen
	total := dataStart + dataLen

	w := binio.NewWriter()
	w.Write(magicRARC)
	w.Uint32(uint32(total))
	w.Uint32(headerSize)
	w.Uint32(uint32(dataStart - headerSize))
	w.Uint32(uint32(dataLen))
	w.Uint32(uint32(dataLen))
	w.Uint32(0)
	w.Uint32(0)

	w.Uint32(uint32(len(nodes)))
	w.Uint32(uint32(nodesStart - headerSize))
	w.Uint32(uint32(len(entries)))
	w.Uint32(uint32(entriesStart - headerSize))
	w.Uint32(uint32(stringsLen))
	w.Uint32(uint32(stringsStart - headerSize))
	w.Uint16(uint16(len(entries)))
	w.Uint8(1)
	w.Zero(5)

	for _, n := range nodes {
		w.Write(n.id[:])
		w.Uint32(n.nameOffset)
		w.Uint16(n.hash)
		w.Uint16(n.entryCount)
		w.Uint32(n.firstEntry)
	}
	Pad(w)

	for _, e := range entries {
		w.Uint16(e.id)
		w.Uint16(e.hash)
		w.Uint32(uint32(e.flags)<<24 | e.nameOffset)
		w.Uint32(e.dataOffset)
		w.Uint32(e.size)
		w.Uint32(0)
	}
	Pad(w)

	w.Write(strs.buf)
	Pad(w)

	for _, e := range entries {
		if e.file == nil {
			continue
		}
		w.Write(e.file.Data)
		Pad(w)
	}

	return w.Bytes(), nil
}
