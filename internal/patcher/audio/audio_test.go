package audio

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/config"
	perrors "github.com/shiroemons/go-mkddpatcher/internal/patcher/errors"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/mocks"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/tables"
	"github.com/shiroemons/go-mkddpatcher/pkg/baa"
)

func newRebuilder(t *testing.T) (*Rebuilder, *tables.Tables) {
	t.Helper()
	tbl, err := tables.Load()
	if err != nil {
		t.Fatal(err)
	}
	return New(tbl, config.NewDebugLogger(false)), tbl
}

// newDisc はオーディオバンクと複製元のストリームを持つディスクを作成します
func newDisc(t *testing.T, tbl *tables.Tables) *mocks.MockDisc {
	t.Helper()
	disc := mocks.NewMockDisc("GM4E")
	bank := make([]byte, 0x90)
	copy(bank, "AA_<")
	copy(bank[0x20:], "bsft")
	binary.BigEndian.PutUint32(bank[0x24:], 0x60)
	disc.AddFile(BankPath, bank)
	for _, d := range tbl.Donors() {
		disc.AddFile(StreamPath(d.Source), []byte("clip "+d.Source))
	}
	return disc
}

func TestRebuild(t *testing.T) {
	r, tbl := newRebuilder(t)
	disc := newDisc(t, tbl)

	patched, err := r.Rebuild(disc)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if !patched {
		t.Fatal("Rebuild() = false, want true")
	}

	bank, _ := disc.ReadFile(BankPath)
	if !baa.IsPatched(bank) {
		t.Fatal("bank does not contain the sentinel stream")
	}
	ptr := binary.BigEndian.Uint32(bank[0x24:])
	if ptr != 0xA0 {
		t.Errorf("bsft pointer = 0x%X, want 0xA0", ptr)
	}
	table, err := baa.ParseTable(bank[ptr:])
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(table.Names) != len(tbl.Streams()) {
		t.Errorf("len(table) = %d, want %d", len(table.Names), len(tbl.Streams()))
	}

	for _, d := range tbl.Donors() {
		got, err := disc.ReadFile(StreamPath(d.Target))
		if err != nil {
			t.Errorf("%s was not copied: %v", d.Target, err)
			continue
		}
		if string(got) != "clip "+d.Source {
			t.Errorf("%s = %q, want the %s clip", d.Target, got, d.Source)
		}
	}
}

func TestRebuildIdempotent(t *testing.T) {
	r, tbl := newRebuilder(t)
	disc := newDisc(t, tbl)
	if _, err := r.Rebuild(disc); err != nil {
		t.Fatal(err)
	}
	first, _ := disc.ReadFile(BankPath)
	changed := len(disc.ChangedFiles())

	patched, err := r.Rebuild(disc)
	if err != nil {
		t.Fatalf("2回目の Rebuild() error = %v", err)
	}
	if patched {
		t.Error("2回目の Rebuild() はバンクを変更しないはず")
	}
	second, _ := disc.ReadFile(BankPath)
	if !bytes.Equal(first, second) {
		t.Error("bank changed on the second rebuild")
	}
	if len(disc.ChangedFiles()) != changed {
		t.Errorf("changed files = %d, want %d", len(disc.ChangedFiles()), changed)
	}
}

func TestRebuildKeepsExistingStreams(t *testing.T) {
	r, tbl := newRebuilder(t)
	disc := newDisc(t, tbl)
	target := StreamPath(tbl.Donors()[0].Target)
	disc.AddFile(target, []byte("custom music"))

	if _, err := r.Rebuild(disc); err != nil {
		t.Fatal(err)
	}
	if got, _ := disc.ReadFile(target); string(got) != "custom music" {
		t.Errorf("%s = %q, want the existing clip", target, got)
	}
}

func TestRebuildErrors(t *testing.T) {
	r, tbl := newRebuilder(t)

	tests := []struct {
		name     string
		setup    func(d *mocks.MockDisc)
		wantKind perrors.Kind
	}{
		{"バンクがない", func(d *mocks.MockDisc) { delete(d.Files, strings.ToLower(BankPath)) }, perrors.AssetMissing},
		{"bsftタグがない", func(d *mocks.MockDisc) { d.AddFile(BankPath, make([]byte, 0x200)) }, perrors.AudioBankLayoutMismatch},
		{"bsftタグが遠すぎる", func(d *mocks.MockDisc) {
			bank := make([]byte, 0x200)
			copy(bank[0x180:], "bsft")
			d.AddFile(BankPath, bank)
		}, perrors.AudioBankLayoutMismatch},
		{"複製元がない", func(d *mocks.MockDisc) {
			delete(d.Files, strings.ToLower(StreamPath(tbl.Donors()[0].Source)))
		}, perrors.AssetMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disc := newDisc(t, tbl)
			tt.setup(disc)
			_, err := r.Rebuild(disc)
			if got := perrors.KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf(%v) = %v, want %v", err, got, tt.wantKind)
			}
		})
	}
}
