// Package errors はパッチ処理の失敗の種類とカスタムエラータイプを提供します
package errors

import (
	"errors"
	"fmt"
)

// Kind はパッチ処理の失敗の種類です
type Kind int

const (
	// KindUnknown は分類されていない失敗
	KindUnknown Kind = iota
	// UnrecognizedRegion はディスクのゲームIDから地域を判定できない
	UnrecognizedRegion
	// ManifestIncomplete はMODパッケージの定義が不足している
	ManifestIncomplete
	// CalibrationOutOfDomain はミニマップの向きが 0-3 の範囲外
	CalibrationOutOfDomain
	// AddressTableMismatch は実行ファイルがアドレステーブルと一致しない
	AddressTableMismatch
	// AudioBankLayoutMismatch はオーディオバンクの構造が想定と異なる
	AudioBankLayoutMismatch
	// AssetMissing は必要なファイルが見つからない
	AssetMissing
)

// 種類ごとのエラー
var (
	// ErrUnrecognizedRegion は地域を判定できない場合のエラー
	ErrUnrecognizedRegion = errors.New("ディスクの地域を判定できません")

	// ErrManifestIncomplete はMODパッケージの定義が不足している場合のエラー
	ErrManifestIncomplete = errors.New("MODパッケージの定義が不足しています")

	// ErrCalibrationOutOfDomain はミニマップの設定値が不正な場合のエラー
	ErrCalibrationOutOfDomain = errors.New("ミニマップの設定値が範囲外です")

	// ErrAddressTableMismatch は実行ファイルがアドレステーブルと一致しない場合のエラー
	ErrAddressTableMismatch = errors.New("実行ファイルがアドレステーブルと一致しません")

	// ErrAudioBankLayoutMismatch はオーディオバンクの構造が想定と異なる場合のエラー
	ErrAudioBankLayoutMismatch = errors.New("オーディオバンクの構造が想定と異なります")

	// ErrAssetMissing は必要なファイルが見つからない場合のエラー
	ErrAssetMissing = errors.New("必要なファイルが見つかりません")
)

var sentinels = map[Kind]error{
	UnrecognizedRegion:      ErrUnrecognizedRegion,
	ManifestIncomplete:      ErrManifestIncomplete,
	CalibrationOutOfDomain:  ErrCalibrationOutOfDomain,
	AddressTableMismatch:    ErrAddressTableMismatch,
	AudioBankLayoutMismatch: ErrAudioBankLayoutMismatch,
	AssetMissing:            ErrAssetMissing,
}

var names = map[Kind]string{
	KindUnknown:             "Unknown",
	UnrecognizedRegion:      "UnrecognizedRegion",
	ManifestIncomplete:      "ManifestIncomplete",
	CalibrationOutOfDomain:  "CalibrationOutOfDomain",
	AddressTableMismatch:    "AddressTableMismatch",
	AudioBankLayoutMismatch: "AudioBankLayoutMismatch",
	AssetMissing:            "AssetMissing",
}

// String は種類の名前を返します
func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Title はエラーダイアログのタイトルを返します
func (k Kind) Title() string {
	switch k {
	case UnrecognizedRegion:
		return "Unknown Game"
	case ManifestIncomplete:
		return "Invalid Mod Package"
	case CalibrationOutOfDomain:
		return "Invalid Minimap Settings"
	case AddressTableMismatch:
		return "Unsupported Game Version"
	case AudioBankLayoutMismatch:
		return "Unsupported Audio Bank"
	case AssetMissing:
		return "Missing File"
	default:
		return "Error"
	}
}

// Sentinel は種類に対応するエラーを返します
func (k Kind) Sentinel() error {
	return sentinels[k]
}

// PatchError はパッチ処理中のエラー
type PatchError struct {
	Kind Kind   // 失敗の種類
	Op   string // 実行していた操作
	Path string // 対象のファイルやパッケージ
	Err  error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *PatchError) Error() string {
	msg := e.Kind.String()
	if s := e.Kind.Sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap は元のエラーを返します
func (e *PatchError) Unwrap() error {
	return e.Err
}

// Is は種類に対応するエラーと一致するか判定します
func (e *PatchError) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && target == s
}

// New は新しいPatchErrorを作成します
func New(kind Kind, op, path string, err error) *PatchError {
	return &PatchError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// KindOf はエラーの種類を返します。PatchError を含まない場合は KindUnknown です。
func KindOf(err error) Kind {
	var pe *PatchError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	for k, s := range sentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindUnknown
}
