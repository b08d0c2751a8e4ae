package rarc

import "errors"

var (
	// ErrInvalidMagic は RARC ヘッダが見つからない場合のエラー
	ErrInvalidMagic = errors.New("not a RARC archive")

	// ErrCompressed は Yaz0 圧縮されたアーカイブの場合のエラー
	ErrCompressed = errors.New("compressed archives are not supported")

	// ErrCorrupt はノードやエントリのテーブルが壊れている場合のエラー
	ErrCorrupt = errors.New("corrupt archive")

	// ErrDuplicateName は同じディレクトリに同名のエントリを追加しようとした場合のエラー
	ErrDuplicateName = errors.New("duplicate entry name")

	// ErrTooManyEntries はエントリ数が16ビットで表せる数を超える場合のエラー
	ErrTooManyEntries = errors.New("too many entries")

	// ErrNotFound はパスに一致するエントリが存在しない場合のエラー
	ErrNotFound = errors.New("entry not found")
)
