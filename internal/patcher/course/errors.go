package course

import "errors"

var (
	// ErrNameConflict は名前の変更後に同じ名前のファイルが重なる場合のエラー
	ErrNameConflict = errors.New("名前の変更後にファイル名が重複します")

	// ErrSceneArchive はディスク上のシーンアーカイブを読み書きできない場合のエラー
	ErrSceneArchive = errors.New("シーンアーカイブを処理できません")
)
