package course

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/mocks"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/models"
	"github.com/shiroemons/go-mkddpatcher/pkg/rarc"
)

var luigiSlot = models.Slot{
	Name:           "Luigi Circuit",
	LongName:       "Luigi2",
	ShortName:      "luigi2",
	TrackNameImage: "coname_luigi_circuit.bti",
	TrackImage:     "cop_luigi_circuit.bti",
}

var peachSlot = models.Slot{
	Name:           "Peach Beach",
	LongName:       "Peach",
	ShortName:      "peach",
	TrackNameImage: "coname_peach_beach.bti",
	TrackImage:     "cop_peach_beach.bti",
}

// trackArchive はテスト用のコースアーカイブを作成します
func trackArchive(t *testing.T, root string) *rarc.Archive {
	t.Helper()
	arc := rarc.New(root)
	sub := rarc.NewDirectory("objects")
	for _, err := range []error{
		arc.Root.Add(rarc.NewFile("custom_course.bol", []byte("bol"))),
		arc.Root.Add(rarc.NewFile("README", []byte("no separator"))),
		arc.Root.Add(rarc.NewFile("custom_course.bmd", []byte("bmd"))),
		sub.Add(rarc.NewFile("custom_tree.bmd", []byte("tree"))),
		arc.Root.Add(sub),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	return arc
}

func childNames(d *rarc.Directory) []string {
	var names []string
	for _, n := range d.Children() {
		names = append(names, n.Name())
	}
	return names
}

func TestRenameArchive(t *testing.T) {
	tests := []struct {
		name        string
		newName     string
		multiplayer bool
		wantRoot    string
		wantFiles   []string
	}{
		{"通常のコース", "peach", false, "peach", []string{"peach_course.bol", "README", "peach_course.bmd", "objects"}},
		{"マルチプレイ用", "peach", true, "peachl", []string{"peach_course.bol", "README", "peach_course.bmd", "objects"}},
		{"ルイージサーキット", "luigi2", false, "luigi2", []string{"luigi_course.bol", "README", "luigi_course.bmd", "objects"}},
		{"ルイージサーキットのマルチプレイ用", "luigi2", true, "luigi2l", []string{"luigi_course.bol", "README", "luigi_course.bmd", "objects"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arc := trackArchive(t, "custom")
			if err := RenameArchive(arc, tt.newName, tt.multiplayer); err != nil {
				t.Fatalf("RenameArchive() error = %v", err)
			}
			if arc.Root.Name() != tt.wantRoot {
				t.Errorf("root = %q, want %q", arc.Root.Name(), tt.wantRoot)
			}
			got := childNames(arc.Root)
			if len(got) != len(tt.wantFiles) {
				t.Fatalf("children = %v, want %v", got, tt.wantFiles)
			}
			for i := range got {
				if got[i] != tt.wantFiles[i] {
					t.Errorf("children[%d] = %q, want %q", i, got[i], tt.wantFiles[i])
				}
			}

			// サブディレクトリの中は変更しない
			sub, err := arc.Find(tt.wantRoot + "/objects/custom_tree.bmd")
			if err != nil || sub.Name() != "custom_tree.bmd" {
				t.Errorf("nested file was renamed: %v", err)
			}
			data, err := arc.ReadFile(tt.wantRoot + "/" + tt.wantFiles[0])
			if err != nil || string(data) != "bol" {
				t.Errorf("renamed file data = %q, %v", data, err)
			}
		})
	}
}

func TestRenameArchiveSwap(t *testing.T) {
	arc := rarc.New("x")
	if err := arc.Root.Add(rarc.NewFile("peach_a.bin", []byte("1"))); err != nil {
		t.Fatal(err)
	}
	if err := arc.Root.Add(rarc.NewFile("mario_b.bin", []byte("2"))); err != nil {
		t.Fatal(err)
	}
	if err := RenameArchive(arc, "peach", false); err != nil {
		t.Fatalf("RenameArchive() error = %v", err)
	}
	got := childNames(arc.Root)
	if got[0] != "peach_a.bin" || got[1] != "peach_b.bin" {
		t.Errorf("children = %v", got)
	}
}

func TestRenameArchiveConflict(t *testing.T) {
	arc := rarc.New("x")
	if err := arc.Root.Add(rarc.NewFile("a_course.bol", nil)); err != nil {
		t.Fatal(err)
	}
	if err := arc.Root.Add(rarc.NewFile("b_course.bol", nil)); err != nil {
		t.Fatal(err)
	}
	if err := RenameArchive(arc, "peach", false); !errors.Is(err, ErrNameConflict) {
		t.Fatalf("RenameArchive() error = %v, want ErrNameConflict", err)
	}
	// 失敗した場合はファイル名を変更しない
	got := childNames(arc.Root)
	if got[0] != "a_course.bol" || got[1] != "b_course.bol" {
		t.Errorf("children = %v", got)
	}
}

func TestBuildTrackArchives(t *testing.T) {
	single, err := trackArchive(t, "custom").MarshalUncompressed()
	if err != nil {
		t.Fatal(err)
	}
	pkg := &models.TrackPackage{Source: "mod.zip", Slot: peachSlot, TrackArc: single, TrackMPArc: single}

	a, b, err := BuildTrackArchives(pkg)
	if err != nil {
		t.Fatalf("BuildTrackArchives() error = %v", err)
	}
	for _, tc := range []struct {
		data []byte
		root string
	}{{a, "peach"}, {b, "peachl"}} {
		arc, err := rarc.Parse(tc.data)
		if err != nil {
			t.Fatal(err)
		}
		if arc.Root.Name() != tc.root {
			t.Errorf("root = %q, want %q", arc.Root.Name(), tc.root)
		}
		if _, err := arc.Find(tc.root + "/peach_course.bol"); err != nil {
			t.Errorf("peach_course.bol not found: %v", err)
		}
	}

	pkg.TrackMPArc = []byte("broken")
	if _, _, err := BuildTrackArchives(pkg); err == nil {
		t.Error("壊れたアーカイブでエラーを期待しました")
	}
}

func TestTextureNames(t *testing.T) {
	tests := []struct {
		name      string
		slot      models.Slot
		wantLong  string
		wantShort string
	}{
		{"ルイージサーキット", luigiSlot, "Luigi", "luigi"},
		{"その他のコース", peachSlot, "Peach", "peach"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			long, short := TextureNames(tt.slot)
			if long != tt.wantLong || short != tt.wantShort {
				t.Errorf("TextureNames() = %q, %q, want %q, %q", long, short, tt.wantLong, tt.wantShort)
			}
		})
	}
}

// sceneArchive はtimgディレクトリを持つシーンアーカイブを作成します
func sceneArchive(t *testing.T, root string, files ...string) []byte {
	t.Helper()
	arc := rarc.New(root)
	timg := rarc.NewDirectory("timg")
	for _, f := range files {
		if err := timg.Add(rarc.NewFile(f, []byte("original"))); err != nil {
			t.Fatal(err)
		}
	}
	if err := arc.Root.Add(timg); err != nil {
		t.Fatal(err)
	}
	data, err := arc.MarshalUncompressed()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestInjectTextures(t *testing.T) {
	disc := mocks.NewMockDisc("GM4E")
	disc.AddFile(SceneArchivePath("English", "coursename"), sceneArchive(t, "coursename", "luigi_names.bti"))
	disc.AddFile(SceneArchivePath("English", "courseselect"), sceneArchive(t, "courseselect", "cop_luigi_circuit.bti"))

	if !HasLanguage(disc, "English") || HasLanguage(disc, "German") {
		t.Fatal("HasLanguage() returned unexpected results")
	}

	assets := models.LanguageAssets{
		BigLogo:    []byte("big"),
		SmallLogo:  []byte("small"),
		TrackName:  []byte("name"),
		TrackImage: []byte("image"),
	}
	if err := InjectTextures(disc, "English", luigiSlot, assets); err != nil {
		t.Fatalf("InjectTextures() error = %v", err)
	}

	big, err := disc.ReadFile("files/CourseName/English/Luigi_name.bti")
	if err != nil || !bytes.Equal(big, assets.BigLogo) {
		t.Errorf("big logo = %q, %v", big, err)
	}

	tests := []struct {
		name    string
		archive string
		path    string
		want    []byte
	}{
		{"小さいロゴ", "coursename", "coursename/timg/luigi_names.bti", assets.SmallLogo},
		{"コース名", "courseselect", "courseselect/timg/coname_luigi_circuit.bti", assets.TrackName},
		{"コース画像", "courseselect", "courseselect/timg/cop_luigi_circuit.bti", assets.TrackImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := disc.ReadFile(SceneArchivePath("English", tt.archive))
			if err != nil {
				t.Fatal(err)
			}
			arc, err := rarc.Parse(data)
			if err != nil {
				t.Fatal(err)
			}
			got, err := arc.ReadFile(tt.path)
			if err != nil {
				t.Fatalf("ReadFile(%s) error = %v", tt.path, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("%s = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestInjectTexturesMissingScene(t *testing.T) {
	disc := mocks.NewMockDisc("GM4E")
	disc.AddFile(SceneArchivePath("English", "coursename"), sceneArchive(t, "coursename"))

	err := InjectTextures(disc, "English", peachSlot, models.LanguageAssets{})
	if err == nil {
		t.Fatal("courseselect.arc がない場合はエラーを期待しました")
	}
}
