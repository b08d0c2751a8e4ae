// Package course はコースのアーカイブの名前変更とコース画像の差し込みを行います
package course

import (
	"fmt"
	"strings"

	perrors "github.com/shiroemons/go-mkddpatcher/internal/patcher/errors"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/interfaces"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/models"
	"github.com/shiroemons/go-mkddpatcher/pkg/rarc"
)

const (
	// luigiCircuit はルイージサーキットの短い内部名です。ファイル名では "luigi" になります。
	luigiCircuit = "luigi2"
	luigiShort   = "luigi"

	multiplayerSuffix = "l"
	separator         = "_"
)

// CoursePath はコースのアーカイブのディスク上のパスを返します
func CoursePath(slot models.Slot, multiplayer bool) string {
	if multiplayer {
		return "files/Course/" + slot.LongName + "L.arc"
	}
	return "files/Course/" + slot.LongName + ".arc"
}

// StaffGhostPath はスタッフゴーストのディスク上のパスを返します
func StaffGhostPath(slot models.Slot) string {
	return "files/StaffGhosts/" + slot.LongName + ".ght"
}

// TextureNames はコース画像のファイル名に使う内部名を返します。
// ルイージサーキットだけは Luigi2/luigi2 ではなく Luigi/luigi を使います。
func TextureNames(slot models.Slot) (long, short string) {
	long, short = slot.LongName, slot.ShortName
	if long == "Luigi2" {
		long = "Luigi"
	}
	if short == luigiCircuit {
		short = luigiShort
	}
	return long, short
}

// RenameArchive はアーカイブのルートと直下のファイルの名前を newName に合わせます。
//
// ルートは newName（マルチプレイ用は newName+"l"）になります。
// ルート直下で "_" を含むファイルは最初の "_" より前の部分が newName に置き換わり、
// newName が "luigi2" の場合は "luigi" になります。ファイルの順序は変わりません。
func RenameArchive(arc *rarc.Archive, newName string, multiplayer bool) error {
	root := newName
	if multiplayer {
		root += multiplayerSuffix
	}
	prefix := newName
	if newName == luigiCircuit {
		prefix = luigiShort
	}

	type rename struct{ from, to string }
	var renames []rename
	final := make(map[string]bool, arc.Root.Len())
	for _, n := range arc.Root.Children() {
		name := n.Name()
		if _, ok := n.(*rarc.File); ok {
			if _, rest, found := strings.Cut(name, separator); found {
				to := prefix + separator + rest
				renames = append(renames, rename{from: name, to: to})
				name = to
			}
		}
		if final[name] {
			return fmt.Errorf("%w: %s/%s", ErrNameConflict, root, name)
		}
		final[name] = true
	}
	arc.SetRootName(root)

	// 途中で名前が衝突しないよう、一時的な名前を経由する
	for i, r := range renames {
		if err := arc.Root.Rename(r.from, tempName(i)); err != nil {
			return err
		}
	}
	for i, r := range renames {
		if err := arc.Root.Rename(tempName(i), r.to); err != nil {
			return err
		}
	}
	return nil
}

func tempName(i int) string {
	return fmt.Sprintf("\x00%d", i)
}

// BuildTrackArchives はパッケージのコースのアーカイブをスロットの内部名に合わせて作り直します
func BuildTrackArchives(pkg *models.TrackPackage) (single, multi []byte, err error) {
	build := func(data []byte, file string, multiplayer bool) ([]byte, error) {
		arc, err := rarc.Parse(data)
		if err != nil {
			return nil, perrors.New(perrors.ManifestIncomplete, "parse", pkg.Source+"/"+file, err)
		}
		if err := RenameArchive(arc, pkg.Slot.ShortName, multiplayer); err != nil {
			return nil, perrors.New(perrors.ManifestIncomplete, "rename", pkg.Source+"/"+file, err)
		}
		return arc.MarshalUncompressed()
	}

	if single, err = build(pkg.TrackArc, "track.arc", false); err != nil {
		return nil, nil, err
	}
	if multi, err = build(pkg.TrackMPArc, "track_mp.arc", true); err != nil {
		return nil, nil, err
	}
	return single, multi, nil
}

// SceneArchivePath は言語ごとのシーンアーカイブのパスを返します
func SceneArchivePath(lang models.Language, name string) string {
	return "files/SceneData/" + string(lang) + "/" + name + ".arc"
}

// HasLanguage はディスクが lang の表示言語を持っているかを返します
func HasLanguage(disc interfaces.Disc, lang models.Language) bool {
	return disc.FileExists(SceneArchivePath(lang, "coursename"))
}

// InjectTextures は1言語分のコース画像をディスクに書き込みます。
// 大きなロゴは CourseName ディレクトリへ、残りはシーンアーカイブの timg へ入ります。
func InjectTextures(disc interfaces.Disc, lang models.Language, slot models.Slot, assets models.LanguageAssets) error {
	long, short := TextureNames(slot)

	if err := disc.WriteFile("files/CourseName/"+string(lang)+"/"+long+"_name.bti", assets.BigLogo); err != nil {
		return fmt.Errorf("%w: %w", ErrSceneArchive, err)
	}

	if err := updateScene(disc, SceneArchivePath(lang, "coursename"), []texture{
		{short + "_names.bti", assets.SmallLogo},
	}); err != nil {
		return err
	}
	return updateScene(disc, SceneArchivePath(lang, "courseselect"), []texture{
		{slot.TrackNameImage, assets.TrackName},
		{slot.TrackImage, assets.TrackImage},
	})
}

type texture struct {
	name string
	data []byte
}

// updateScene はシーンアーカイブの timg ディレクトリのファイルを置き換えて書き戻します
func updateScene(disc interfaces.Disc, path string, files []texture) error {
	data, err := disc.ReadFile(path)
	if err != nil {
		return perrors.New(perrors.AssetMissing, "read", path, err)
	}
	arc, err := rarc.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSceneArchive, path, err)
	}
	for _, f := range files {
		if err := arc.WriteFile(arc.Root.Name()+"/timg/"+f.name, f.data); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSceneArchive, path, err)
		}
	}
	out, err := arc.MarshalUncompressed()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSceneArchive, path, err)
	}
	return disc.WriteFile(path, out)
}
