package rarc

import (
	"bytes"
	"fmt"

	"github.com/shiroemons/go-mkddpatcher/pkg/binio"
	"github.com/shiroemons/go-mkddpatcher/pkg/sjis"
)

const (
	headerSize = 0x20
	infoSize   = 0x20
	nodeSize   = 0x10
	entrySize  = 0x14

	noParent = 0xFFFFFFFF
)

var (
	magicRARC = []byte("RARC")
	magicYaz0 = []byte("Yaz0")
)

type rawNode struct {
	nameOffset uint32
	entryCount uint16
	firstEntry uint32
}

type rawEntry struct {
	id         uint16
	flags      uint8
	nameOffset uint32
	dataOffset uint32
	size       uint32
}

// parser は Parse の途中状態を保持します
type parser struct {
	r         *binio.Reader
	nodes     []rawNode
	entries   []rawEntry
	strings   int
	dataStart int
	visited   map[uint32]bool
}

// Parse は非圧縮の RARC アーカイブを読み込みます
func Parse(data []byte) (*Archive, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], magicYaz0) {
		return nil, ErrCompressed
	}
	if len(data) < headerSize+infoSize || !bytes.Equal(data[:4], magicRARC) {
		return nil, ErrInvalidMagic
	}

	p := &parser{r: binio.NewReader(data), visited: make(map[uint32]bool)}
	if err := p.readTables(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(p.nodes) == 0 {
		return nil, fmt.Errorf("%w: no root node", ErrCorrupt)
	}

	rootName, err := p.name(p.nodes[0].nameOffset)
	if err != nil {
		return nil, err
	}
	root := NewDirectory(rootName)
	if err := p.fill(root, 0); err != nil {
		return nil, err
	}
	return &Archive{Root: root}, nil
}

// readTables はヘッダ、ノードテーブル、エントリテーブルを読み込みます
func (p *parser) readTables() error {
	r := p.r
	if err := r.Seek(0x0C); err != nil {
		return err
	}
	dataOffset, err := r.Uint32()
	if err != nil {
		return err
	}
	p.dataStart = headerSize + int(dataOffset)

	if err := r.Seek(headerSize); err != nil {
		return err
	}
	var info [6]uint32
	for i := range info {
		if info[i], err = r.Uint32(); err != nil {
			return err
		}
	}
	nodeCount, nodeOffset := info[0], info[1]
	entryCount, entryOffset := info[2], info[3]
	p.strings = headerSize + int(info[5])

	if err := r.Seek(headerSize + int(nodeOffset)); err != nil {
		return err
	}
	if !fits(r.Len(), headerSize+int(nodeOffset), nodeCount, nodeSize) {
		return fmt.Errorf("node count %d exceeds the archive size", nodeCount)
	}
	p.nodes = make([]rawNode, 0, nodeCount)
	for i := uint32(0); i < nodeCount; i++ {
		if err := r.Skip(4); err != nil {
			return err
		}
		var n rawNode
		if n.nameOffset, err = r.Uint32(); err != nil {
			return err
		}
		if _, err = r.Uint16(); err != nil {
			return err
		}
		if n.entryCount, err = r.Uint16(); err != nil {
			return err
		}
		if n.firstEntry, err = r.Uint32(); err != nil {
			return err
		}
		p.nodes = append(p.nodes, n)
	}

	if err := r.Seek(headerSize + int(entryOffset)); err != nil {
		return err
	}
	if !fits(r.Len(), headerSize+int(entryOffset), entryCount, entrySize) {
		return fmt.Errorf("entry count %d exceeds the archive size", entryCount)
	}
	p.entries = make([]rawEntry, 0, entryCount)
	for i := uint32(0); i < entryCount; i++ {
		var e rawEntry
		if e.id, err = r.Uint16(); err != nil {
			return err
		}
		if _, err = r.Uint16(); err != nil {
			return err
		}
		typeName, err := r.Uint32()
		if err != nil {
			return err
		}
		e.flags = uint8(typeName >> 24)
		e.nameOffset = typeName & 0xFFFFFF
		if e.dataOffset, err = r.Uint32(); err != nil {
			return err
		}
		if e.size, err = r.Uint32(); err != nil {
			return err
		}
		if err := r.Skip(4); err != nil {
			return err
		}
		p.entries = append(p.entries, e)
	}
	return nil
}

// fits は offset から size バイトの要素が count 個、長さ total のデータに収まるかを返します
func fits(total, offset int, count uint32, size int) bool {
	if offset < 0 || offset > total {
		return false
	}
	return uint64(count)*uint64(size) <= uint64(total-offset)
}

// name は文字列テーブルから名前を取り出します
func (p *parser) name(offset uint32) (string, error) {
	raw, err := p.r.CStringAt(p.strings + int(offset))
	if err != nil {
		return "", fmt.Errorf("%w: name at 0x%X: %w", ErrCorrupt, offset, err)
	}
	return sjis.Decode(raw)
}

// fill はノード index のエントリを dir に読み込みます
func (p *parser) fill(dir *Directory, index uint32) error {
	if int(index) >= len(p.nodes) || p.visited[index] {
		return fmt.Errorf("%w: bad node reference %d", ErrCorrupt, index)
	}
	p.visited[index] = true

	node := p.nodes[index]
	end := int(node.firstEntry) + int(node.entryCount)
	if end > len(p.entries) {
		return fmt.Errorf("%w: node %d entries out of range", ErrCorrupt, index)
	}

	for _, e := range p.entries[node.firstEntry:end] {
		name, err := p.name(e.nameOffset)
		if err != nil {
			return err
		}
		if name == "." || name == ".." {
			continue
		}

		if e.flags&FlagDirectory != 0 {
			sub := NewDirectory(name)
			if err := p.fill(sub, e.dataOffset); err != nil {
				return err
			}
			if err := dir.Add(sub); err != nil {
				return err
			}
			continue
		}

		start := p.dataStart + int(e.dataOffset)
		if err := p.r.Seek(start); err != nil {
			return fmt.Errorf("%w: file %s: %w", ErrCorrupt, name, err)
		}
		raw, err := p.r.Bytes(int(e.size))
		if err != nil {
			return fmt.Errorf("%w: file %s: %w", ErrCorrupt, name, err)
		}
		data := make([]byte, len(raw))
		copy(data, raw)
		if err := dir.Add(&File{name: name, Data: data, Flags: e.flags}); err != nil {
			return err
		}
	}
	return nil
}
