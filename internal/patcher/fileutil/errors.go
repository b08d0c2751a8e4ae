package fileutil

import "errors"

var (
	// ErrPackageNotFound はMODパッケージが見つからない場合のエラー
	ErrPackageNotFound = errors.New("MODパッケージが見つかりません")

	// ErrUnexpectedDirectory はフォルダモード以外でディレクトリが指定された場合のエラー
	ErrUnexpectedDirectory = errors.New("ディレクトリを指定する場合はフォルダモードを使用してください")

	// ErrNotDirectory はフォルダモードでファイルが指定された場合のエラー
	ErrNotDirectory = errors.New("フォルダモードではディレクトリを指定してください")

	// ErrReadDirectory はディレクトリ内のファイル一覧を取得できない場合のエラー
	ErrReadDirectory = errors.New("ディレクトリ内のファイル一覧を取得できませんでした")
)
