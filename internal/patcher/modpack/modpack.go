// Package modpack はMODパッケージを読み込み、内容を検証します
package modpack

import (
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/ini.v1"

	perrors "github.com/shiroemons/go-mkddpatcher/internal/patcher/errors"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/interfaces"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/models"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/tables"
)

// パッケージ内のファイル名
const (
	ManifestFile   = "trackinfo.ini"
	MinimapFile    = "minimap.json"
	TrackArc       = "track.arc"
	TrackMPArc     = "track_mp.arc"
	StaffGhost     = "staffghost.ght"
	LapMusicNormal = "lap_music_normal.ast"
	LapMusicFast   = "lap_music_fast.ast"
	ImagesDir      = "course_images"

	BigLogo    = "track_big_logo.bti"
	SmallLogo  = "track_small_logo.bti"
	TrackName  = "track_name.bti"
	TrackImage = "track_image.bti"

	manifestSection = "Config"
)

var manifestKeys = []string{"trackname", "author", "replaces", "replaces_music", "main_language"}

// minimapFile は minimap.json の内容です。欠けているキーを検出するためにポインタで受けます。
type minimapFile struct {
	TopLeftX     *float64 `json:"Top Left Corner X"`
	TopLeftZ     *float64 `json:"Top Left Corner Z"`
	BottomRightX *float64 `json:"Bottom Right Corner X"`
	BottomRightZ *float64 `json:"Bottom Right Corner Z"`
	Orientation  *float64 `json:"Orientation"`
}

// Resolver はMODパッケージを TrackPackage に変換します
type Resolver struct {
	tables *tables.Tables
	logger interfaces.Logger
}

// NewResolver は新しいResolverを作成します
func NewResolver(t *tables.Tables, logger interfaces.Logger) *Resolver {
	return &Resolver{tables: t, logger: logger}
}

// ResolveZip はメモリ上のzipデータからMODパッケージを読み込みます
func (r *Resolver) ResolveZip(name string, data []byte) (*models.TrackPackage, error) {
	src, err := OpenZipBytes(name, data)
	if err != nil {
		return nil, perrors.New(perrors.ManifestIncomplete, "open package", name, err)
	}
	defer src.Close()
	return r.Resolve(src)
}

// Resolve はMODパッケージを読み込み、必須の項目とファイルがそろっているか検証します
func (r *Resolver) Resolve(src interfaces.PackageSource) (*models.TrackPackage, error) {
	name := src.Name()
	pkg := &models.TrackPackage{Source: name, Images: make(map[models.Language]models.LanguageAssets)}

	if err := r.readManifest(src, pkg); err != nil {
		return nil, err
	}
	r.logger.Printf("%s: '%s' by %s replaces %s\n", name, pkg.TrackName, pkg.Author, pkg.Slot.Name)

	cal, err := readMinimap(src)
	if err != nil {
		return nil, err
	}
	pkg.Calibration = cal

	required := []struct {
		file string
		dst  *[]byte
	}{
		{TrackArc, &pkg.TrackArc},
		{TrackMPArc, &pkg.TrackMPArc},
		{StaffGhost, &pkg.StaffGhost},
	}
	for _, m := range required {
		if !src.FileExists(m.file) {
			return nil, perrors.New(perrors.AssetMissing, "resolve", name, fmt.Errorf("%w: %s", ErrMemberNotFound, m.file))
		}
		if *m.dst, err = src.ReadFile(m.file); err != nil {
			return nil, perrors.New(perrors.AssetMissing, "read", name+"/"+m.file, err)
		}
	}

	optional := []struct {
		file string
		dst  *[]byte
	}{
		{LapMusicNormal, &pkg.LapMusicNormal},
		{LapMusicFast, &pkg.LapMusicFast},
	}
	for _, m := range optional {
		if !src.FileExists(m.file) {
			continue
		}
		if *m.dst, err = src.ReadFile(m.file); err != nil {
			return nil, perrors.New(perrors.AssetMissing, "read", name+"/"+m.file, err)
		}
	}

	for _, lang := range models.Languages {
		dir := ImagesDir + "/" + string(lang)
		if !src.DirExists(dir) {
			continue
		}
		assets, err := readImages(src, dir)
		if err != nil {
			return nil, err
		}
		pkg.Images[lang] = assets
	}
	if _, _, ok := pkg.ImagesFor(pkg.MainLanguage); !ok {
		r.logger.Printf("%s: course images for %s not found, textures will not be replaced\n", name, pkg.MainLanguage)
	}
	return pkg, nil
}

// readManifest は trackinfo.ini を読み込みます
func (r *Resolver) readManifest(src interfaces.PackageSource, pkg *models.TrackPackage) error {
	name := src.Name()
	if !src.FileExists(ManifestFile) {
		return perrors.New(perrors.ManifestIncomplete, "resolve", name, fmt.Errorf("%w: %s", ErrMemberNotFound, ManifestFile))
	}
	data, err := src.ReadFile(ManifestFile)
	if err != nil {
		return perrors.New(perrors.ManifestIncomplete, "read", name+"/"+ManifestFile, err)
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return perrors.New(perrors.ManifestIncomplete, "parse", name+"/"+ManifestFile, err)
	}
	sec, err := cfg.GetSection(manifestSection)
	if err != nil {
		return perrors.New(perrors.ManifestIncomplete, "parse", name+"/"+ManifestFile, fmt.Errorf("[%s] section is missing", manifestSection))
	}

	values := make(map[string]string, len(manifestKeys))
	var missing []string
	for _, k := range manifestKeys {
		if !sec.HasKey(k) {
			missing = append(missing, k)
			continue
		}
		v := strings.TrimSpace(sec.Key(k).String())
		if v == "" {
			missing = append(missing, k)
			continue
		}
		values[k] = v
	}
	if len(missing) > 0 {
		return perrors.New(perrors.ManifestIncomplete, "parse", name+"/"+ManifestFile, fmt.Errorf("missing keys: %s", strings.Join(missing, ", ")))
	}

	pkg.TrackName = values["trackname"]
	pkg.Author = values["author"]

	var ok bool
	if pkg.Slot, ok = r.tables.Slot(values["replaces"]); !ok {
		return perrors.New(perrors.ManifestIncomplete, "parse", name+"/"+ManifestFile, fmt.Errorf("unknown track %q in replaces", values["replaces"]))
	}
	if pkg.MusicSlot, ok = r.tables.Slot(values["replaces_music"]); !ok {
		return perrors.New(perrors.ManifestIncomplete, "parse", name+"/"+ManifestFile, fmt.Errorf("unknown track %q in replaces_music", values["replaces_music"]))
	}

	lang, ok := lookupLanguage(values["main_language"])
	if !ok {
		return perrors.New(perrors.ManifestIncomplete, "parse", name+"/"+ManifestFile, fmt.Errorf("unknown main_language %q", values["main_language"]))
	}
	pkg.MainLanguage = lang
	return nil
}

func lookupLanguage(s string) (models.Language, bool) {
	for _, l := range models.Languages {
		if strings.EqualFold(string(l), s) {
			return l, true
		}
	}
	return "", false
}

// readMinimap は minimap.json を読み込み、向きの値を検証します
func readMinimap(src interfaces.PackageSource) (models.Calibration, error) {
	name := src.Name()
	if !src.FileExists(MinimapFile) {
		return models.Calibration{}, perrors.New(perrors.ManifestIncomplete, "resolve", name, fmt.Errorf("%w: %s", ErrMemberNotFound, MinimapFile))
	}
	data, err := src.ReadFile(MinimapFile)
	if err != nil {
		return models.Calibration{}, perrors.New(perrors.ManifestIncomplete, "read", name+"/"+MinimapFile, err)
	}

	var mf minimapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return models.Calibration{}, perrors.New(perrors.ManifestIncomplete, "parse", name+"/"+MinimapFile, err)
	}
	fields := []struct {
		key string
		v   *float64
	}{
		{"Top Left Corner X", mf.TopLeftX},
		{"Top Left Corner Z", mf.TopLeftZ},
		{"Bottom Right Corner X", mf.BottomRightX},
		{"Bottom Right Corner Z", mf.BottomRightZ},
		{"Orientation", mf.Orientation},
	}
	var missing []string
	for _, f := range fields {
		if f.v == nil {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return models.Calibration{}, perrors.New(perrors.ManifestIncomplete, "parse", name+"/"+MinimapFile, fmt.Errorf("missing keys: %s", strings.Join(missing, ", ")))
	}

	o := *mf.Orientation
	if o != math.Trunc(o) || !models.ValidOrientation(int(o)) {
		return models.Calibration{}, perrors.New(perrors.CalibrationOutOfDomain, "parse", name+"/"+MinimapFile, fmt.Errorf("orientation must be in the range 0-3 but is %v", o))
	}
	return models.Calibration{
		TopLeftX:     float32(*mf.TopLeftX),
		TopLeftZ:     float32(*mf.TopLeftZ),
		BottomRightX: float32(*mf.BottomRightX),
		BottomRightZ: float32(*mf.BottomRightZ),
		Orientation:  int(o),
	}, nil
}

// readImages は1言語分のコース画像を読み込みます
func readImages(src interfaces.PackageSource, dir string) (models.LanguageAssets, error) {
	var a models.LanguageAssets
	files := []struct {
		file string
		dst  *[]byte
	}{
		{BigLogo, &a.BigLogo},
		{SmallLogo, &a.SmallLogo},
		{TrackName, &a.TrackName},
		{TrackImage, &a.TrackImage},
	}
	for _, f := range files {
		p := dir + "/" + f.file
		if !src.FileExists(p) {
			return a, perrors.New(perrors.AssetMissing, "resolve", src.Name(), fmt.Errorf("%w: %s", ErrMemberNotFound, p))
		}
		data, err := src.ReadFile(p)
		if err != nil {
			return a, perrors.New(perrors.AssetMissing, "read", src.Name()+"/"+p, err)
		}
		*f.dst = data
	}
	return a, nil
}
