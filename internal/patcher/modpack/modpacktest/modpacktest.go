// Package modpacktest はテスト用のMODパッケージを作成するためのパッケージです
package modpacktest

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/klauspost/compress/zip"
)

// Manifest は trackinfo.ini を作成します
func Manifest(replaces, music, language string) []byte {
	return fmt.Appendf(nil, `[Config]
trackname = Test Track
author = Tester
replaces = %s
replaces_music = %s
main_language = %s
`, replaces, music, language)
}

// Minimap は minimap.json を作成します
func Minimap(orientation int) []byte {
	return fmt.Appendf(nil, `{
  "Top Left Corner X": -1000.5,
  "Top Left Corner Z": -2000.0,
  "Bottom Right Corner X": 3000.25,
  "Bottom Right Corner Z": 4000.0,
  "Orientation": %d
}`, orientation)
}

// Files は最低限のファイルを持つパッケージの中身を返します
func Files(replaces, music string, trackArc, trackMPArc []byte) map[string][]byte {
	return map[string][]byte{
		"trackinfo.ini":  Manifest(replaces, music, "English"),
		"minimap.json":   Minimap(1),
		"track.arc":      trackArc,
		"track_mp.arc":   trackMPArc,
		"staffghost.ght": []byte("GHOST"),
	}
}

// Zip は files をzipアーカイブにします
func Zip(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[n]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
