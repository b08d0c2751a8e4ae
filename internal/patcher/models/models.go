// Package models はmkddpatcherで使用するデータモデルを定義します
package models

// Region はディスクの地域です
type Region string

const (
	RegionUS  Region = "US"
	RegionPAL Region = "PAL"
	RegionJP  Region = "JP"
)

// Language はコース画像の言語です
type Language string

// Languages はゲームが持つ表示言語の一覧です
var Languages = []Language{"English", "Japanese", "German", "Italian", "French", "Spanish"}

// Calibration はミニマップの表示範囲と向きです
type Calibration struct {
	TopLeftX     float32 `json:"Top Left Corner X"`
	TopLeftZ     float32 `json:"Top Left Corner Z"`
	BottomRightX float32 `json:"Bottom Right Corner X"`
	BottomRightZ float32 `json:"Bottom Right Corner Z"`
	Orientation  int     `json:"Orientation"`
}

// ValidOrientation は向きの値が 0-3 の範囲かどうかを返します
func ValidOrientation(v int) bool {
	return v >= 0 && v <= 3
}

// Slot は置き換え対象のコースの内部名と関連ファイルです
type Slot struct {
	Name           string `yaml:"name"`
	LongName       string `yaml:"long"`
	ShortName      string `yaml:"short"`
	NormalMusic    string `yaml:"normal_music"`
	FastMusic      string `yaml:"fast_music"`
	TrackNameImage string `yaml:"track_name_image"`
	TrackImage     string `yaml:"track_image"`
}

// MinimapAddresses はミニマップ設定が格納されている実行ファイル上のアドレスです
type MinimapAddresses struct {
	TopLeftX     uint32
	TopLeftZ     uint32
	BottomRightX uint32
	BottomRightZ uint32
	Orientation  uint32
}

// LanguageAssets は1言語分のコース画像です
type LanguageAssets struct {
	BigLogo    []byte
	SmallLogo  []byte
	TrackName  []byte
	TrackImage []byte
}

// TrackPackage は読み込み済みのMODパッケージです
type TrackPackage struct {
	Source       string
	TrackName    string
	Author       string
	MainLanguage Language

	// Slot は置き換えるコース、MusicSlot は置き換える音楽のコースです
	Slot      Slot
	MusicSlot Slot

	Calibration Calibration

	TrackArc   []byte
	TrackMPArc []byte
	StaffGhost []byte

	// 片方だけの場合は両方に使われる
	LapMusicNormal []byte
	LapMusicFast   []byte

	Images map[Language]LanguageAssets
}

// ImagesFor は lang のコース画像を返します。lang の画像がない場合はメイン言語の画像を使います。
func (p *TrackPackage) ImagesFor(lang Language) (LanguageAssets, Language, bool) {
	if a, ok := p.Images[lang]; ok {
		return a, lang, true
	}
	if a, ok := p.Images[p.MainLanguage]; ok {
		return a, p.MainLanguage, true
	}
	return LanguageAssets{}, "", false
}

// LapMusic は通常ラップと最終ラップの音楽を返します。片方しかない場合は両方に同じものを返します。
func (p *TrackPackage) LapMusic() (normal, fast []byte) {
	normal, fast = p.LapMusicNormal, p.LapMusicFast
	if normal == nil {
		normal = fast
	}
	if fast == nil {
		fast = normal
	}
	return normal, fast
}

// Release は取り込み済みのファイルの内容を解放します。名前やスロットは残ります。
func (p *TrackPackage) Release() {
	p.TrackArc = nil
	p.TrackMPArc = nil
	p.StaffGhost = nil
	p.LapMusicNormal = nil
	p.LapMusicFast = nil
	p.Images = nil
}
