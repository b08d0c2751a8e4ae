package app

import "errors"

var (
	// ErrCancelled は利用者が処理を中止した場合のエラー
	ErrCancelled = errors.New("処理が中止されました")

	// ErrOpenDisc はディスクイメージを開けない場合のエラー
	ErrOpenDisc = errors.New("ディスクイメージを開けません")

	// ErrLoadTables は固定テーブルを読み込めない場合のエラー
	ErrLoadTables = errors.New("テーブルの読み込みに失敗しました")

	// ErrWriteDisc はディスクイメージへの書き込みに失敗した場合のエラー
	ErrWriteDisc = errors.New("ディスクイメージへの書き込みに失敗しました")

	// ErrExport は新しいディスクイメージの書き出しに失敗した場合のエラー
	ErrExport = errors.New("ディスクイメージの書き出しに失敗しました")
)
