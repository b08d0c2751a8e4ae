package baa

import "errors"

var (
	// ErrPointerNotFound はヘッダ領域に bsft ポインタが見つからない場合のエラー
	ErrPointerNotFound = errors.New("bsft pointer not found in header")

	// ErrInvalidTable は BSFT テーブルが壊れている場合のエラー
	ErrInvalidTable = errors.New("invalid bsft table")
)
