package modpack

import "errors"

var (
	// ErrOpenPackage はMODパッケージを開けない場合のエラー
	ErrOpenPackage = errors.New("MODパッケージを開けません")

	// ErrMemberNotFound はパッケージ内にファイルが見つからない場合のエラー
	ErrMemberNotFound = errors.New("パッケージ内にファイルがありません")
)
