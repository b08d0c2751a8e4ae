package app

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/audio"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/config"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/course"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/interfaces"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/mocks"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/modpack/modpacktest"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/tables"
	"github.com/shiroemons/go-mkddpatcher/pkg/gcm"
	"github.com/shiroemons/go-mkddpatcher/pkg/gcm/gcmtest"
	"github.com/shiroemons/go-mkddpatcher/pkg/rarc"
)

// テスト用DOLのミニマップ設定の位置
const (
	orientationOffset = 0x110
	cornersOffset     = 0x120
)

// testMinimapTable はテスト用DOLのアドレスを指すミニマップ表です
const testMinimapTable = `{
  "US": {
    "Peach Beach": ["0x80003120", "0x80003124", "0x80003128", "0x8000312C", "0x80003110"],
    "Luigi Circuit": ["0x80003120", "0x80003124", "0x80003128", "0x8000312C", "0x80003110"]
  }
}`

// testTables は testMinimapTable を使うテーブルを返します
func testTables(t *testing.T) *tables.Tables {
	t.Helper()
	tbl, err := tables.LoadWithMinimap([]byte(testMinimapTable))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

// executable は li r0, orientation を持つ DOL を返します
func executable(orientation uint16) []byte {
	data := gcmtest.MinimalDOL(0x40)
	binary.BigEndian.PutUint32(data[orientationOffset:], 0x38000000|uint32(orientation))
	return data
}

func mustArchive(t *testing.T, arc *rarc.Archive) []byte {
	t.Helper()
	data, err := arc.MarshalUncompressed()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// sceneArchive は timg ディレクトリだけを持つシーンアーカイブを返します
func sceneArchive(t *testing.T, root string) []byte {
	t.Helper()
	arc := rarc.New(root)
	if err := arc.Root.Add(rarc.NewDirectory("timg")); err != nil {
		t.Fatal(err)
	}
	return mustArchive(t, arc)
}

// trackArchive はMODパッケージのコースアーカイブを返します
func trackArchive(t *testing.T) []byte {
	t.Helper()
	arc := rarc.New("custom")
	if err := arc.Root.Add(rarc.NewFile("custom_course.bol", []byte("bol"))); err != nil {
		t.Fatal(err)
	}
	return mustArchive(t, arc)
}

// bank は bsft ポインタを持つオーディオバンクを返します
func bank() []byte {
	b := make([]byte, 0x80)
	copy(b, "AA_<")
	copy(b[0x10:], "bsft")
	binary.BigEndian.PutUint32(b[0x14:], 0x40)
	return b
}

// discFiles は英語のシーンデータだけを持つディスクの files/ 以下を返します
func discFiles(t *testing.T, tbl *tables.Tables) map[string][]byte {
	t.Helper()
	files := map[string][]byte{
		"files/Course/Peach.arc": []byte("original peach"),
		audio.BankPath:           bank(),
	}
	for _, name := range []string{"coursename", "courseselect"} {
		files[course.SceneArchivePath("English", name)] = sceneArchive(t, name)
	}
	for _, d := range tbl.Donors() {
		files[audio.StreamPath(d.Source)] = []byte("clip " + d.Source)
	}
	return files
}

// packageFiles は Peach Beach を置き換えるMODパッケージの中身を返します
func packageFiles(t *testing.T) map[string][]byte {
	t.Helper()
	arc := trackArchive(t)
	files := modpacktest.Files("Peach Beach", "Peach Beach", arc, arc)
	for _, name := range []string{"track_big_logo.bti", "track_small_logo.bti", "track_name.bti", "track_image.bti"} {
		files["course_images/English/"+name] = []byte("English " + name)
	}
	return files
}

func mustZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	data, err := modpacktest.Zip(files)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// readerOpener はメモリ上のディスクイメージを開きます
type readerOpener struct {
	image []byte
}

func (o readerOpener) Open(string) (interfaces.Disc, error) {
	d, err := gcm.OpenReader(bytes.NewReader(o.image), int64(len(o.image)))
	if err != nil {
		return nil, err
	}
	return d, nil
}

// mockOpener は MockDisc を返します
type mockOpener struct {
	disc *mocks.MockDisc
}

func (o mockOpener) Open(string) (interfaces.Disc, error) {
	return o.disc, nil
}

// newMockDisc はテスト用DOLとディスクの中身を持つ MockDisc を返します
func newMockDisc(t *testing.T, tbl *tables.Tables, orientation uint16) *mocks.MockDisc {
	t.Helper()
	disc := mocks.NewMockDisc("GM4E")
	disc.AddFile(gcm.MainDOL, executable(orientation))
	for p, d := range discFiles(t, tbl) {
		disc.AddFile(p, d)
	}
	return disc
}

// zipPackage はファイルシステム上のZIPのMODパッケージです
type zipPackage struct {
	name  string
	files map[string][]byte
}

// setup はZIPのMODパッケージを読めるファイルシステムと設定を作成します
func setup(t *testing.T, output string, packages ...zipPackage) (*config.Config, *mocks.MockFileSystem) {
	t.Helper()
	fs := mocks.NewMockFileSystem()
	cfg := &config.Config{InputPath: "game.iso", OutputPath: output}
	for _, p := range packages {
		fs.AddFile(p.name, mustZip(t, p.files))
		cfg.Packages = append(cfg.Packages, p.name)
	}
	return cfg, fs
}
