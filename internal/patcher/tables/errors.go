package tables

import "errors"

// ErrLoadTable はテーブルの読み込みに失敗した場合のエラー
var ErrLoadTable = errors.New("テーブルの読み込みに失敗しました")
