package dol

import "errors"

var (
	// ErrInvalidHeader は DOL ヘッダが壊れている場合のエラー
	ErrInvalidHeader = errors.New("invalid DOL header")

	// ErrUnmappedAddress は仮想アドレスがどのセクションにも含まれない場合のエラー
	ErrUnmappedAddress = errors.New("address is not mapped by any section")

	// ErrNotLoadImmediate は指定アドレスの命令が li r0 ではない場合のエラー
	ErrNotLoadImmediate = errors.New("instruction is not li r0")
)
