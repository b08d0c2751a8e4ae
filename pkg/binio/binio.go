// Package binio はディスクイメージやアーカイブのビッグエンディアンなバイナリを読み書きするためのパッケージです。
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange は読み込み位置がデータの範囲外の場合のエラー
	ErrOutOfRange = errors.New("position out of range")

	// ErrUnterminated はNUL終端が見つからない場合のエラー
	ErrUnterminated = errors.New("unterminated string")
)

// Align は n を align の倍数に切り上げます。align は2の累乗である必要があります。
func Align(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// PadLen は n を align の倍数にするために必要なバイト数を返します
func PadLen(n, align int) int {
	return Align(n, align) - n
}

// Reader はバイト列からビッグエンディアンの値を順に読み込みます。
type Reader struct {
	data []byte
	pos  int
}

// NewReader は新しい Reader を作成します。
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len はデータ全体の長さを返します
func (r *Reader) Len() int {
	return len(r.data)
}

// Pos は現在の読み込み位置を返します
func (r *Reader) Pos() int {
	return r.pos
}

// Seek は読み込み位置を絶対位置で移動します
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("%w: seek to 0x%X (size 0x%X)", ErrOutOfRange, pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// Skip は n バイト読み飛ばします
func (r *Reader) Skip(n int) error {
	return r.Seek(r.pos + n)
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: read %d bytes at 0x%X (size 0x%X)", ErrOutOfRange, n, r.pos, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Uint8 は1バイト読み込みます
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 は2バイト読み込みます
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Uint24 は3バイト読み込みます
func (r *Reader) Uint24() (uint32, error) {
	b, err := r.take(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// Uint32 は4バイト読み込みます
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Bytes は n バイト読み込みます。返されるスライスは元データと領域を共有します。
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// CStringAt は絶対位置 pos から NUL 終端までのバイト列を返します（読み込み位置は変わりません）
func (r *Reader) CStringAt(pos int) ([]byte, error) {
	if pos < 0 || pos >= len(r.data) {
		return nil, fmt.Errorf("%w: string at 0x%X", ErrOutOfRange, pos)
	}
	for i := pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			return r.data[pos:i], nil
		}
	}
	return nil, fmt.Errorf("%w at 0x%X", ErrUnterminated, pos)
}

// Writer はビッグエンディアンの値を末尾に追記していくバッファです。
type Writer struct {
	buf []byte
}

// NewWriter は新しい Writer を作成します。
func NewWriter() *Writer {
	return &Writer{}
}

// Len は書き込み済みのバイト数を返します
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes は書き込み済みのバイト列を返します
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Write は io.Writer を実装します
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Uint8 は1バイト書き込みます
func (w *Writer) Uint8(v uint8) {
	w.buf = append(w.buf, v)
}

// Uint16 は2バイト書き込みます
func (w *Writer) Uint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// Uint32 は4バイト書き込みます
func (w *Writer) Uint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// Zero は n バイトの0を書き込みます
func (w *Writer) Zero(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// Pad は長さが align の倍数になるまで0で埋めます
func (w *Writer) Pad(align int) {
	w.Zero(PadLen(len(w.buf), align))
}

// PutUint32At は書き込み済み領域の pos に4バイトを上書きします
func (w *Writer) PutUint32At(pos int, v uint32) {
	binary.BigEndian.PutUint32(w.buf[pos:], v)
}
