// Package sjis はディスクやアーカイブのファイル名に使われる Shift-JIS 文字列を変換します
package sjis

import (
	"fmt"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Decode は Shift-JIS のバイト列を UTF-8 文字列に変換します
func Decode(b []byte) (string, error) {
	ret, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("shift-jis decode: %w", err)
	}
	return string(ret), nil
}

// Encode は UTF-8 文字列を Shift-JIS のバイト列に変換します
func Encode(s string) ([]byte, error) {
	ret, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("shift-jis encode %q: %w", s, err)
	}
	return ret, nil
}
