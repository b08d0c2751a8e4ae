// Package audio はオーディオバンクにコース用のストリームを登録し、不足しているストリームを複製します
package audio

import (
	"errors"

	perrors "github.com/shiroemons/go-mkddpatcher/internal/patcher/errors"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/interfaces"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/tables"
	"github.com/shiroemons/go-mkddpatcher/pkg/baa"
)

const (
	// BankPath はオーディオバンクのディスク上のパスです
	BankPath = "files/AudioRes/GCKart.baa"
	// StreamDir はストリーム音声のディレクトリです
	StreamDir = "files/AudioRes/Stream/"
)

// StreamPath はストリーム音声のディスク上のパスを返します
func StreamPath(name string) string {
	return StreamDir + name
}

// Rebuilder はオーディオバンクを拡張します
type Rebuilder struct {
	tables *tables.Tables
	logger interfaces.Logger
}

// New は新しいRebuilderを作成します
func New(t *tables.Tables, logger interfaces.Logger) *Rebuilder {
	return &Rebuilder{tables: t, logger: logger}
}

// Rebuild はオーディオバンクにストリーム名テーブルを追加し、不足しているストリームを複製します。
// 既に拡張済みのバンクは変更しません。バンクを書き換えた場合 true を返します。
func (r *Rebuilder) Rebuild(disc interfaces.Disc) (bool, error) {
	bank, err := disc.ReadFile(BankPath)
	if err != nil {
		return false, perrors.New(perrors.AssetMissing, "read", BankPath, err)
	}

	out, patched, err := baa.Patch(bank, baa.Table{Names: r.tables.Streams()})
	if err != nil {
		if errors.Is(err, baa.ErrPointerNotFound) {
			return false, perrors.New(perrors.AudioBankLayoutMismatch, "patch", BankPath, err)
		}
		return false, perrors.New(perrors.KindUnknown, "patch", BankPath, err)
	}
	if patched {
		if err := disc.WriteFile(BankPath, out); err != nil {
			return false, err
		}
		r.logger.Printf("patched %s\n", BankPath)
	} else {
		r.logger.Printf("%s is already patched\n", BankPath)
	}

	if err := r.copyDonors(disc); err != nil {
		return false, err
	}
	return patched, nil
}

// copyDonors は存在しないストリームを元になるストリームから複製します
func (r *Rebuilder) copyDonors(disc interfaces.Disc) error {
	for _, d := range r.tables.Donors() {
		target := StreamPath(d.Target)
		if disc.FileExists(target) {
			continue
		}
		source := StreamPath(d.Source)
		data, err := disc.ReadFile(source)
		if err != nil {
			return perrors.New(perrors.AssetMissing, "copy", source, err)
		}
		if err := disc.WriteFile(target, data); err != nil {
			return err
		}
		r.logger.Printf("copied %s to %s\n", source, target)
	}
	return nil
}
