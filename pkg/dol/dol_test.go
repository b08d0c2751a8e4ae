package dol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

const (
	textAddr = 0x80003100
	dataAddr = 0x80400000
)

// buildImage はテキスト1個とデータ1個のセクションを持つ DOL を作成します
func buildImage(t *testing.T) []byte {
	t.Helper()
	data := make([]byte, HeaderSize+0x40)
	// text0
	binary.BigEndian.PutUint32(data[offsetsAt:], HeaderSize)
	binary.BigEndian.PutUint32(data[addrsAt:], textAddr)
	binary.BigEndian.PutUint32(data[sizesAt:], 0x20)
	// data0
	binary.BigEndian.PutUint32(data[offsetsAt+textSections*4:], HeaderSize+0x20)
	binary.BigEndian.PutUint32(data[addrsAt+textSections*4:], dataAddr)
	binary.BigEndian.PutUint32(data[sizesAt+textSections*4:], 0x20)

	binary.BigEndian.PutUint32(data[HeaderSize+0x08:], 0x38000002) // li r0, 2
	binary.BigEndian.PutUint32(data[HeaderSize+0x0C:], 0x7C0802A6) // mflr r0
	return data
}

func TestParse(t *testing.T) {
	img, err := Parse(buildImage(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	secs := img.Sections()
	if len(secs) != 2 {
		t.Fatalf("len(Sections()) = %d, want 2", len(secs))
	}
	if !secs[0].Text || secs[1].Text {
		t.Errorf("section kinds = %v/%v, want text/data", secs[0].Text, secs[1].Text)
	}

	if _, err := Parse(make([]byte, 0x10)); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("短いデータで ErrInvalidHeader を期待しましたが %v でした", err)
	}

	broken := buildImage(t)
	binary.BigEndian.PutUint32(broken[sizesAt:], 0x1000)
	if _, err := Parse(broken); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("範囲外セクションで ErrInvalidHeader を期待しましたが %v でした", err)
	}
}

func TestSize(t *testing.T) {
	data := buildImage(t)
	got, err := Size(data[:HeaderSize])
	if err != nil {
		t.Fatal(err)
	}
	if got != HeaderSize+0x40 {
		t.Errorf("Size() = 0x%X, want 0x%X", got, HeaderSize+0x40)
	}
}

func TestResolve(t *testing.T) {
	img, err := Parse(buildImage(t))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		addr    uint32
		n       int
		want    int
		wantErr bool
	}{
		{"テキスト先頭", textAddr, 4, HeaderSize, false},
		{"データ途中", dataAddr + 0x10, 4, HeaderSize + 0x30, false},
		{"セクション末尾をまたぐ", textAddr + 0x1E, 4, 0, true},
		{"どこにも属さない", 0x80000000, 4, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := img.Resolve(tt.addr, tt.n)
			if tt.wantErr {
				if !errors.Is(err, ErrUnmappedAddress) {
					t.Errorf("Resolve() error = %v, want ErrUnmappedAddress", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = 0x%X, want 0x%X", got, tt.want)
			}
		})
	}
}

func TestSeekReadWrite(t *testing.T) {
	img, err := Parse(buildImage(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := img.Seek(dataAddr, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	if _, err := img.Write([]byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	if pos, _ := img.Seek(0, io.SeekCurrent); pos != dataAddr+4 {
		t.Errorf("position after write = 0x%X, want 0x%X", pos, dataAddr+4)
	}

	if _, err := img.Seek(-4, io.SeekCurrent); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if _, err := io.ReadFull(img, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3, 4}) {
		t.Errorf("Read() = % X, want 01 02 03 04", buf)
	}
	if !bytes.Equal(img.Bytes()[HeaderSize+0x20:HeaderSize+0x24], buf) {
		t.Error("write did not land at the translated file offset")
	}

	if _, err := img.Seek(-1, io.SeekStart); err == nil {
		t.Error("負の位置へのシークはエラーになるべきです")
	}
}

func TestLoadImmediate(t *testing.T) {
	img, err := Parse(buildImage(t))
	if err != nil {
		t.Fatal(err)
	}

	v, err := img.ReadLoadImmediate(textAddr + 0x08)
	if err != nil {
		t.Fatalf("ReadLoadImmediate() error = %v", err)
	}
	if v != 2 {
		t.Errorf("ReadLoadImmediate() = %d, want 2", v)
	}

	if err := img.WriteLoadImmediate(textAddr+0x08, 3); err != nil {
		t.Fatal(err)
	}
	raw, _ := img.ReadUint32At(textAddr + 0x08)
	if raw != 0x38000003 {
		t.Errorf("instruction = 0x%08X, want 0x38000003", raw)
	}

	if err := img.WriteLoadImmediate(textAddr+0x08, -1); err != nil {
		t.Fatal(err)
	}
	if v, _ := img.ReadLoadImmediate(textAddr + 0x08); v != -1 {
		t.Errorf("負の即値 = %d, want -1", v)
	}

	if _, err := img.ReadLoadImmediate(textAddr + 0x0C); !errors.Is(err, ErrNotLoadImmediate) {
		t.Errorf("mflr で ErrNotLoadImmediate を期待しましたが %v でした", err)
	}
}

func TestFloat32(t *testing.T) {
	img, err := Parse(buildImage(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := img.WriteFloat32At(dataAddr+8, -1234.5); err != nil {
		t.Fatal(err)
	}
	raw, _ := img.ReadUint32At(dataAddr + 8)
	if raw != 0xC49A5000 {
		t.Errorf("float bits = 0x%08X, want 0xC49A5000", raw)
	}
	f, _ := img.ReadFloat32At(dataAddr + 8)
	if f != -1234.5 {
		t.Errorf("ReadFloat32At() = %v, want -1234.5", f)
	}
}
