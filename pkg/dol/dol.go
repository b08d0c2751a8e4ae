// Package dol はゲームの実行ファイル（DOL形式）を仮想アドレスで読み書きするためのパッケージです。
//
// DOL はヘッダに最大7個のテキストセクションと11個のデータセクションの
// ファイル上の位置・ロードアドレス・サイズを持ちます。Image はそれを使って
// 仮想アドレスをファイル上の位置に変換し、io.ReadWriteSeeker として振る舞います。
package dol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// HeaderSize は DOL ヘッダのサイズです
	HeaderSize = 0x100

	textSections = 7
	dataSections = 11
	sectionCount = textSections + dataSections

	offsetsAt = 0x00
	addrsAt   = 0x48
	sizesAt   = 0x90

	// li rD, SIMM は addi rD, 0, SIMM としてエンコードされる
	loadImmediateR0 = 0x38000000
	opcodeMask      = 0xFFFF0000
)

// Section は DOL の1セクションです
type Section struct {
	Offset  uint32
	Address uint32
	Size    uint32
	Text    bool
}

// Image は DOL 実行ファイルのメモリ上のコピーです
type Image struct {
	data     []byte
	sections []Section
	pos      int64
}

// Parse は DOL のバイト列を読み込みます。data はコピーされます。
func Parse(data []byte) (*Image, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidHeader, len(data))
	}

	img := &Image{data: make([]byte, len(data))}
	copy(img.data, data)

	for i := 0; i < sectionCount; i++ {
		s := Section{
			Offset:  binary.BigEndian.Uint32(data[offsetsAt+i*4:]),
			Address: binary.BigEndian.Uint32(data[addrsAt+i*4:]),
			Size:    binary.BigEndian.Uint32(data[sizesAt+i*4:]),
			Text:    i < textSections,
		}
		if s.Offset == 0 || s.Size == 0 {
			continue
		}
		if uint64(s.Offset)+uint64(s.Size) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: section %d (0x%X+0x%X) exceeds file size 0x%X", ErrInvalidHeader, i, s.Offset, s.Size, len(data))
		}
		img.sections = append(img.sections, s)
	}
	return img, nil
}

// Size はヘッダのセクションテーブルから DOL のファイルサイズを求めます
func Size(header []byte) (int, error) {
	if len(header) < HeaderSize {
		return 0, ErrInvalidHeader
	}
	end := HeaderSize
	for i := 0; i < sectionCount; i++ {
		off := binary.BigEndian.Uint32(header[offsetsAt+i*4:])
		size := binary.BigEndian.Uint32(header[sizesAt+i*4:])
		if off == 0 || size == 0 {
			continue
		}
		if e := int(off) + int(size); e > end {
			end = e
		}
	}
	return end, nil
}

// Bytes は現在の DOL のバイト列を返します
func (img *Image) Bytes() []byte {
	return img.data
}

// Sections はセクションの一覧を返します
func (img *Image) Sections() []Section {
	out := make([]Section, len(img.sections))
	copy(out, img.sections)
	return out
}

// Resolve は仮想アドレス addr から n バイトの範囲をファイル上の位置に変換します
func (img *Image) Resolve(addr uint32, n int) (int, error) {
	for _, s := range img.sections {
		if addr >= s.Address && uint64(addr)+uint64(n) <= uint64(s.Address)+uint64(s.Size) {
			return int(s.Offset + (addr - s.Address)), nil
		}
	}
	return 0, fmt.Errorf("%w: 0x%08X", ErrUnmappedAddress, addr)
}

// Seek は io.Seeker を実装します。位置は仮想アドレスです。
func (img *Image) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = img.pos + offset
	default:
		return 0, fmt.Errorf("dol: unsupported whence %d", whence)
	}
	if abs < 0 || abs > math.MaxUint32 {
		return 0, fmt.Errorf("%w: 0x%X", ErrUnmappedAddress, abs)
	}
	img.pos = abs
	return abs, nil
}

// Read は io.Reader を実装します
func (img *Image) Read(p []byte) (int, error) {
	off, err := img.Resolve(uint32(img.pos), len(p))
	if err != nil {
		return 0, err
	}
	n := copy(p, img.data[off:])
	img.pos += int64(n)
	return n, nil
}

// Write は io.Writer を実装します
func (img *Image) Write(p []byte) (int, error) {
	off, err := img.Resolve(uint32(img.pos), len(p))
	if err != nil {
		return 0, err
	}
	n := copy(img.data[off:], p)
	img.pos += int64(n)
	return n, nil
}

// ReadUint32At は仮想アドレス addr の4バイトを読み込みます
func (img *Image) ReadUint32At(addr uint32) (uint32, error) {
	off, err := img.Resolve(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(img.data[off:]), nil
}

// WriteUint32At は仮想アドレス addr に4バイトを書き込みます
func (img *Image) WriteUint32At(addr uint32, v uint32) error {
	off, err := img.Resolve(addr, 4)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(img.data[off:], v)
	return nil
}

// WriteFloat32At は仮想アドレス addr に IEEE-754 単精度浮動小数点数を書き込みます
func (img *Image) WriteFloat32At(addr uint32, f float32) error {
	return img.WriteUint32At(addr, math.Float32bits(f))
}

// ReadFloat32At は仮想アドレス addr の単精度浮動小数点数を読み込みます
func (img *Image) ReadFloat32At(addr uint32) (float32, error) {
	v, err := img.ReadUint32At(addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadLoadImmediate は addr にある li r0, N 命令の即値 N を返します
func (img *Image) ReadLoadImmediate(addr uint32) (int16, error) {
	ins, err := img.ReadUint32At(addr)
	if err != nil {
		return 0, err
	}
	if ins&opcodeMask != loadImmediateR0 {
		return 0, fmt.Errorf("%w: 0x%08X at 0x%08X", ErrNotLoadImmediate, ins, addr)
	}
	return int16(uint16(ins)), nil
}

// WriteLoadImmediate は addr に li r0, v 命令を書き込みます
func (img *Image) WriteLoadImmediate(addr uint32, v int16) error {
	return img.WriteUint32At(addr, loadImmediateR0|uint32(uint16(v)))
}
