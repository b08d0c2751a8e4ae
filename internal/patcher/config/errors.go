package config

import "errors"

var (
	// ErrLoadSettings は設定ファイルの読み込みに失敗した場合のエラー
	ErrLoadSettings = errors.New("設定ファイルの読み込みに失敗しました")

	// ErrNoInput は入力ディスクが指定されていない場合のエラー
	ErrNoInput = errors.New("入力ディスクイメージを指定してください")

	// ErrNoOutput は出力先が指定されていない場合のエラー
	ErrNoOutput = errors.New("出力先のディスクイメージを指定してください")

	// ErrNoPackages はMODパッケージが指定されていない場合のエラー
	ErrNoPackages = errors.New("MODパッケージを1つ以上指定してください")
)
