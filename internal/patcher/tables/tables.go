// Package tables はコースの内部名やミニマップのアドレスなどの固定テーブルを提供します
package tables

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/models"
)

//go:embed tracks.yaml
var tracksYAML []byte

//go:embed minimap_locations.json
var minimapJSON []byte

// Donor は存在しない場合に source から複製するストリームです
type Donor struct {
	Target string `yaml:"target"`
	Source string `yaml:"source"`
}

type trackFile struct {
	Regions map[string]models.Region `yaml:"regions"`
	Slots   []models.Slot            `yaml:"slots"`
	Streams []string                 `yaml:"streams"`
	Donors  []Donor                  `yaml:"donors"`
}

// Tables は読み込み済みの固定テーブルです。作成後は変更されません。
type Tables struct {
	regions map[string]models.Region
	slots   map[string]models.Slot
	order   []string
	minimap map[models.Region]map[string]models.MinimapAddresses
	streams []string
	donors  []Donor
}

// Load は組み込みのテーブルを読み込みます。
// 組み込みのミニマップのアドレス表は空なので、ミニマップを書き換えるには LoadMinimapFile を使います。
func Load() (*Tables, error) {
	return LoadWithMinimap(minimapJSON)
}

// LoadMinimapFile は組み込みのテーブルを読み込み、ミニマップのアドレスだけ path の内容を使います
func LoadMinimapFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTable, err)
	}
	return LoadWithMinimap(data)
}

// LoadWithMinimap は組み込みのコース表と、与えられたミニマップのアドレス表を読み込みます
func LoadWithMinimap(minimap []byte) (*Tables, error) {
	var tf trackFile
	if err := yaml.Unmarshal(tracksYAML, &tf); err != nil {
		return nil, fmt.Errorf("%w: tracks.yaml: %w", ErrLoadTable, err)
	}

	t := &Tables{
		regions: tf.Regions,
		slots:   make(map[string]models.Slot, len(tf.Slots)),
		streams: tf.Streams,
		donors:  tf.Donors,
	}
	for _, s := range tf.Slots {
		t.slots[strings.ToLower(s.Name)] = s
		t.order = append(t.order, s.Name)
	}

	var err error
	if t.minimap, err = parseMinimap(minimap); err != nil {
		return nil, err
	}
	return t, nil
}

// parseMinimap は地域ごと、コースごとの5つのアドレス（16進文字列）を読み込みます
func parseMinimap(data []byte) (map[models.Region]map[string]models.MinimapAddresses, error) {
	var raw map[models.Region]map[string][5]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: minimap: %w", ErrLoadTable, err)
	}

	out := make(map[models.Region]map[string]models.MinimapAddresses, len(raw))
	for region, slots := range raw {
		out[region] = make(map[string]models.MinimapAddresses, len(slots))
		for slot, hex := range slots {
			var v [5]uint32
			for i, s := range hex {
				n, err := strconv.ParseUint(s, 0, 32)
				if err != nil {
					return nil, fmt.Errorf("%w: minimap %s/%s: %w", ErrLoadTable, region, slot, err)
				}
				v[i] = uint32(n)
			}
			out[region][strings.ToLower(slot)] = models.MinimapAddresses{
				TopLeftX:     v[0],
				TopLeftZ:     v[1],
				BottomRightX: v[2],
				BottomRightZ: v[3],
				Orientation:  v[4],
			}
		}
	}
	return out, nil
}

// Region はゲームIDから地域を判定します
func (t *Tables) Region(gameID string) (models.Region, bool) {
	r, ok := t.regions[gameID]
	return r, ok
}

// Slot は表示名からコースを探します。大文字小文字は区別しません。
func (t *Tables) Slot(name string) (models.Slot, bool) {
	s, ok := t.slots[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// SlotNames はコースの表示名を定義順に返します
func (t *Tables) SlotNames() []string {
	return append([]string(nil), t.order...)
}

// HasMinimap はミニマップのアドレスが1件でも登録されているかを返します
func (t *Tables) HasMinimap() bool {
	for _, slots := range t.minimap {
		if len(slots) > 0 {
			return true
		}
	}
	return false
}

// Minimap は地域とコースに対応するミニマップのアドレスを返します
func (t *Tables) Minimap(region models.Region, slot string) (models.MinimapAddresses, bool) {
	a, ok := t.minimap[region][strings.ToLower(slot)]
	return a, ok
}

// Streams はオーディオバンクに登録するストリーム名を返します
func (t *Tables) Streams() []string {
	return append([]string(nil), t.streams...)
}

// Donors は複製するストリームの一覧を返します
func (t *Tables) Donors() []Donor {
	return append([]Donor(nil), t.donors...)
}
