package gcm

import "errors"

var (
	// ErrInvalidImage はディスクヘッダやファイルテーブルが壊れている場合のエラー
	ErrInvalidImage = errors.New("invalid disc image")

	// ErrNotFound はパスに対応するファイルが存在しない場合のエラー
	ErrNotFound = errors.New("file not found in disc")

	// ErrReadOnly は書き換えできないシステムファイルへの書き込みのエラー
	ErrReadOnly = errors.New("system file is read-only")

	// ErrInvalidPath は files/ と sys/ のどちらにも属さないパスのエラー
	ErrInvalidPath = errors.New("invalid disc path")

	// ErrImageTooLarge は出力イメージが32ビットのオフセットで表せない場合のエラー
	ErrImageTooLarge = errors.New("disc image exceeds 32-bit offsets")

	// ErrClosed は閉じたディスクを使用した場合のエラー
	ErrClosed = errors.New("disc is closed")
)
