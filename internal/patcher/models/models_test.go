package models

import "testing"

func TestValidOrientation(t *testing.T) {
	for v, want := range map[int]bool{-1: false, 0: true, 1: true, 2: true, 3: true, 4: false, 7: false} {
		if got := ValidOrientation(v); got != want {
			t.Errorf("ValidOrientation(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestTrackPackage_ImagesFor(t *testing.T) {
	en := LanguageAssets{BigLogo: []byte("en")}
	de := LanguageAssets{BigLogo: []byte("de")}

	tests := []struct {
		name     string
		images   map[Language]LanguageAssets
		lang     Language
		wantLang Language
		wantOK   bool
	}{
		{"言語の画像がある", map[Language]LanguageAssets{"English": en, "German": de}, "German", "German", true},
		{"メイン言語で代替", map[Language]LanguageAssets{"English": en}, "French", "English", true},
		{"どちらもない", map[Language]LanguageAssets{"German": de}, "French", "", false},
		{"画像なし", nil, "English", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &TrackPackage{MainLanguage: "English", Images: tt.images}
			a, lang, ok := p.ImagesFor(tt.lang)
			if lang != tt.wantLang || ok != tt.wantOK {
				t.Fatalf("ImagesFor(%s) = %q, %v, want %q, %v", tt.lang, lang, ok, tt.wantLang, tt.wantOK)
			}
			if ok && string(a.BigLogo) != string(tt.images[tt.wantLang].BigLogo) {
				t.Errorf("BigLogo = %q", a.BigLogo)
			}
		})
	}
}

func TestTrackPackage_LapMusic(t *testing.T) {
	tests := []struct {
		name       string
		normal     []byte
		fast       []byte
		wantNormal string
		wantFast   string
	}{
		{"両方ある", []byte("n"), []byte("f"), "n", "f"},
		{"通常ラップだけ", []byte("n"), nil, "n", "n"},
		{"最終ラップだけ", nil, []byte("f"), "f", "f"},
		{"どちらもない", nil, nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &TrackPackage{LapMusicNormal: tt.normal, LapMusicFast: tt.fast}
			normal, fast := p.LapMusic()
			if string(normal) != tt.wantNormal || string(fast) != tt.wantFast {
				t.Errorf("LapMusic() = %q, %q, want %q, %q", normal, fast, tt.wantNormal, tt.wantFast)
			}
			if tt.wantNormal == "" && (normal != nil || fast != nil) {
				t.Error("LapMusic() should return nil when no clip exists")
			}
		})
	}
}

func TestTrackPackage_Release(t *testing.T) {
	p := &TrackPackage{
		TrackName:  "Test",
		Slot:       Slot{Name: "Peach Beach"},
		TrackArc:   []byte("a"),
		StaffGhost: []byte("g"),
		Images:     map[Language]LanguageAssets{"English": {}},
	}
	p.Release()
	if p.TrackArc != nil || p.StaffGhost != nil || p.Images != nil {
		t.Error("Release() kept file contents")
	}
	if p.TrackName != "Test" || p.Slot.Name != "Peach Beach" {
		t.Error("Release() cleared the package description")
	}
}
