// Package baa はオーディオバンク（BAA）内のストリーム名テーブル（BSFT）を扱うパッケージです。
package baa

import (
	"bytes"
	"fmt"

	"github.com/shiroemons/go-mkddpatcher/pkg/binio"
	"github.com/shiroemons/go-mkddpatcher/pkg/rarc"
)

const (
	// Sentinel はこのテーブルで拡張済みのバンクに必ず含まれるエントリ名です
	Sentinel = "COURSE_YCIRCUIT_0"

	// HeaderSearchLimit は bsft ポインタを探すヘッダ領域の大きさです
	HeaderSearchLimit = 0x100
)

var magic = []byte("bsft")

// Table は BSFT のエントリ名の並びです
type Table struct {
	Names []string
}

// MarshalBinary は BSFT をバイト列に変換します。末尾は32バイト境界まで埋めます。
func (t Table) MarshalBinary() ([]byte, error) {
	w := binio.NewWriter()
	w.Write(magic)
	w.Uint32(uint32(len(t.Names)))

	tableStart := w.Len()
	for range t.Names {
		w.Uint32(0)
	}
	for i, name := range t.Names {
		if bytes.IndexByte([]byte(name), 0) >= 0 {
			return nil, fmt.Errorf("%w: name %q contains NUL", ErrInvalidTable, name)
		}
		w.PutUint32At(tableStart+i*4, uint32(w.Len()))
		w.Write([]byte(name))
		w.Uint8(0)
	}
	rarc.Pad(w)
	return w.Bytes(), nil
}

// ParseTable は data の先頭から BSFT を読み込みます
func ParseTable(data []byte) (Table, error) {
	r := binio.NewReader(data)
	tag, err := r.Bytes(4)
	if err != nil || !bytes.Equal(tag, magic) {
		return Table{}, fmt.Errorf("%w: missing bsft magic", ErrInvalidTable)
	}
	count, err := r.Uint32()
	if err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	if uint64(count)*4 > uint64(len(data)-r.Pos()) {
		return Table{}, fmt.Errorf("%w: entry count %d exceeds the table size", ErrInvalidTable, count)
	}

	t := Table{Names: make([]string, 0, count)}
	for i := uint32(0); i < count; i++ {
		off, err := r.Uint32()
		if err != nil {
			return Table{}, fmt.Errorf("%w: %w", ErrInvalidTable, err)
		}
		name, err := r.CStringAt(int(off))
		if err != nil {
			return Table{}, fmt.Errorf("%w: entry %d: %w", ErrInvalidTable, i, err)
		}
		t.Names = append(t.Names, string(name))
	}
	return t, nil
}

// IsPatched はバンクが既に拡張済みかどうかを返します
func IsPatched(bank []byte) bool {
	return bytes.Contains(bank, []byte(Sentinel))
}

// FindPointer は bsft タグの位置を返します。ポインタはタグの直後の4バイトです。
func FindPointer(bank []byte) (int, error) {
	at := bytes.Index(bank, magic)
	if at < 0 || at >= HeaderSearchLimit || at+8 > len(bank) {
		return 0, ErrPointerNotFound
	}
	return at, nil
}

// Patch はバンクの末尾に t を追加し、bsft ポインタをそこへ向けます。
// 拡張済みのバンクは変更せず、そのまま false を返します。
func Patch(bank []byte, t Table) ([]byte, bool, error) {
	if IsPatched(bank) {
		return bank, false, nil
	}
	tagAt, err := FindPointer(bank)
	if err != nil {
		return nil, false, err
	}
	table, err := t.MarshalBinary()
	if err != nil {
		return nil, false, err
	}

	w := binio.NewWriter()
	w.Write(bank)
	rarc.Pad(w)
	tableAt := w.Len()
	w.Write(table)
	w.PutUint32At(tagAt+4, uint32(tableAt))
	return w.Bytes(), true, nil
}
