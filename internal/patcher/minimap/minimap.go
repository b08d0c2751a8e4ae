// Package minimap は実行ファイルに埋め込まれたミニマップの表示範囲と向きを書き換えます
package minimap

import (
	"fmt"

	perrors "github.com/shiroemons/go-mkddpatcher/internal/patcher/errors"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/models"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/tables"
	"github.com/shiroemons/go-mkddpatcher/pkg/dol"
)

const op = "patch minimap"

// Patcher は地域とコースに応じたアドレスでミニマップ設定を書き換えます
type Patcher struct {
	tables *tables.Tables
}

// New は新しいPatcherを作成します
func New(t *tables.Tables) *Patcher {
	return &Patcher{tables: t}
}

// Patch は DOL のバイト列にミニマップ設定を書き込んだ結果を返します。data は変更しません。
func (p *Patcher) Patch(data []byte, region models.Region, slot models.Slot, cal models.Calibration) ([]byte, error) {
	if !models.ValidOrientation(cal.Orientation) {
		return nil, perrors.New(perrors.CalibrationOutOfDomain, op, slot.Name,
			fmt.Errorf("orientation must be in the range 0-3 but is %d", cal.Orientation))
	}
	addrs, ok := p.tables.Minimap(region, slot.Name)
	if !ok {
		return nil, perrors.New(perrors.AddressTableMismatch, op, slot.Name,
			fmt.Errorf("no minimap addresses for %s in region %s; provide an address table with --minimap-table", slot.Name, region))
	}
	img, err := dol.Parse(data)
	if err != nil {
		return nil, perrors.New(perrors.AddressTableMismatch, op, slot.Name, err)
	}
	if err := PatchCalibration(img, addrs, cal); err != nil {
		return nil, err
	}
	return img.Bytes(), nil
}

// PatchCalibration は img の addrs にミニマップ設定を書き込みます。
// 向きの命令が li r0 で 0-3 の値を持っていない場合は何も書き込まずにエラーを返します。
func PatchCalibration(img *dol.Image, addrs models.MinimapAddresses, cal models.Calibration) error {
	if !models.ValidOrientation(cal.Orientation) {
		return perrors.New(perrors.CalibrationOutOfDomain, op, "",
			fmt.Errorf("orientation must be in the range 0-3 but is %d", cal.Orientation))
	}

	current, err := img.ReadLoadImmediate(addrs.Orientation)
	if err != nil {
		return perrors.New(perrors.AddressTableMismatch, op, fmt.Sprintf("0x%08X", addrs.Orientation), err)
	}
	if !models.ValidOrientation(int(current)) {
		return perrors.New(perrors.AddressTableMismatch, op, fmt.Sprintf("0x%08X", addrs.Orientation),
			fmt.Errorf("orientation in the executable is %d, not in the range 0-3; the executable may be from a different game version", current))
	}

	corners := []struct {
		addr uint32
		v    float32
	}{
		{addrs.TopLeftX, cal.TopLeftX},
		{addrs.TopLeftZ, cal.TopLeftZ},
		{addrs.BottomRightX, cal.BottomRightX},
		{addrs.BottomRightZ, cal.BottomRightZ},
	}
	for _, c := range corners {
		if _, err := img.Resolve(c.addr, 4); err != nil {
			return perrors.New(perrors.AddressTableMismatch, op, fmt.Sprintf("0x%08X", c.addr), err)
		}
	}

	if err := img.WriteLoadImmediate(addrs.Orientation, int16(cal.Orientation)); err != nil {
		return perrors.New(perrors.AddressTableMismatch, op, fmt.Sprintf("0x%08X", addrs.Orientation), err)
	}
	for _, c := range corners {
		if err := img.WriteFloat32At(c.addr, c.v); err != nil {
			return perrors.New(perrors.AddressTableMismatch, op, fmt.Sprintf("0x%08X", c.addr), err)
		}
	}
	return nil
}
