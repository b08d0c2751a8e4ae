package minimap

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	perrors "github.com/shiroemons/go-mkddpatcher/internal/patcher/errors"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/models"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/tables"
	"github.com/shiroemons/go-mkddpatcher/pkg/dol"
	"github.com/shiroemons/go-mkddpatcher/pkg/gcm/gcmtest"
)

const text = 0x80003100

var addrs = models.MinimapAddresses{
	TopLeftX:     text + 0x20,
	TopLeftZ:     text + 0x24,
	BottomRightX: text + 0x28,
	BottomRightZ: text + 0x2C,
	Orientation:  text + 0x10,
}

var cal = models.Calibration{TopLeftX: -1234.5, TopLeftZ: 2, BottomRightX: 3.25, BottomRightZ: -4, Orientation: 3}

// executable は向きの命令に li r0, orientation を持つ DOL を返します
func executable(orientation uint16) []byte {
	data := gcmtest.MinimalDOL(0x40)
	binary.BigEndian.PutUint32(data[0x100+0x10:], 0x38000000|uint32(orientation))
	return data
}

func float32At(data []byte, off int) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(data[off:]))
}

func TestPatchCalibration(t *testing.T) {
	img, err := dol.Parse(executable(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := PatchCalibration(img, addrs, cal); err != nil {
		t.Fatalf("PatchCalibration() error = %v", err)
	}

	out := img.Bytes()
	if got := binary.BigEndian.Uint32(out[0x110:]); got != 0x38000003 {
		t.Errorf("orientation instruction = 0x%08X, want 0x38000003", got)
	}
	if got := binary.BigEndian.Uint32(out[0x120:]); got != 0xC49A5000 {
		t.Errorf("top left X bits = 0x%08X, want 0xC49A5000", got)
	}
	want := []float32{cal.TopLeftX, cal.TopLeftZ, cal.BottomRightX, cal.BottomRightZ}
	for i, w := range want {
		if got := float32At(out, 0x120+i*4); got != w {
			t.Errorf("corner %d = %v, want %v", i, got, w)
		}
	}

	// 対象外のバイトは変更しない
	orig := executable(1)
	for _, r := range [][2]int{{0, 0x110}, {0x114, 0x120}, {0x130, len(orig)}} {
		if !bytes.Equal(out[r[0]:r[1]], orig[r[0]:r[1]]) {
			t.Errorf("bytes 0x%X-0x%X changed", r[0], r[1])
		}
	}
}

func TestPatchCalibrationErrors(t *testing.T) {
	unmapped := addrs
	unmapped.BottomRightZ = 0x81000000
	notLI := addrs
	notLI.Orientation = text + 0x14

	tests := []struct {
		name     string
		data     []byte
		addrs    models.MinimapAddresses
		cal      models.Calibration
		wantKind perrors.Kind
	}{
		{"実行ファイルの向きが範囲外", executable(7), addrs, cal, perrors.AddressTableMismatch},
		{"実行ファイルの向きが負", executable(0xFFFF), addrs, cal, perrors.AddressTableMismatch},
		{"li命令ではない", executable(1), notLI, cal, perrors.AddressTableMismatch},
		{"マップされていないアドレス", executable(1), unmapped, cal, perrors.AddressTableMismatch},
		{"設定の向きが範囲外", executable(1), addrs, models.Calibration{Orientation: 4}, perrors.CalibrationOutOfDomain},
		{"設定の向きが負", executable(1), addrs, models.Calibration{Orientation: -1}, perrors.CalibrationOutOfDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := dol.Parse(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			err = PatchCalibration(img, tt.addrs, tt.cal)
			if got := perrors.KindOf(err); got != tt.wantKind {
				t.Fatalf("KindOf(%v) = %v, want %v", err, got, tt.wantKind)
			}
			if !bytes.Equal(img.Bytes(), tt.data) {
				t.Error("image was modified after a failed patch")
			}
		})
	}
}

func TestPatcher(t *testing.T) {
	tbl, err := tables.LoadWithMinimap([]byte(`{"US": {"Peach Beach": ["0x80003120", "0x80003124", "0x80003128", "0x8000312C", "0x80003110"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	p := New(tbl)
	slot, _ := tbl.Slot("Peach Beach")

	data := executable(0)
	out, err := p.Patch(data, models.RegionUS, slot, cal)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if got := binary.BigEndian.Uint32(out[0x110:]); got != 0x38000003 {
		t.Errorf("orientation instruction = 0x%08X", got)
	}
	if binary.BigEndian.Uint32(data[0x110:]) != 0x38000000 {
		t.Error("Patch() modified its input")
	}

	if _, err := p.Patch(data, models.RegionPAL, slot, cal); perrors.KindOf(err) != perrors.AddressTableMismatch {
		t.Errorf("PAL without addresses: error = %v, want AddressTableMismatch", err)
	}
	if _, err := p.Patch(data, models.RegionUS, slot, models.Calibration{Orientation: 9}); perrors.KindOf(err) != perrors.CalibrationOutOfDomain {
		t.Errorf("orientation 9: error = %v, want CalibrationOutOfDomain", err)
	}
}
