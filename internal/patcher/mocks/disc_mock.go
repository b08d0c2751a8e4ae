package mocks

import (
	"errors"
	"slices"
	"strings"
)

// MockDisc はメモリ上のディスクイメージのモック
type MockDisc struct {
	ID       string
	Files    map[string][]byte
	Changed  map[string]bool
	Exported []string
	Closed   bool

	// WriteError が設定されている場合、WriteFile はこのエラーを返す
	WriteError  error
	ExportError error
}

// NewMockDisc は新しいMockDiscを作成します
func NewMockDisc(id string) *MockDisc {
	return &MockDisc{
		ID:      id,
		Files:   make(map[string][]byte),
		Changed: make(map[string]bool),
	}
}

func (m *MockDisc) key(path string) string {
	return strings.ToLower(path)
}

// AddFile は元のディスクにあるファイルとして登録します
func (m *MockDisc) AddFile(path string, data []byte) {
	m.Files[m.key(path)] = data
}

func (m *MockDisc) GameID() string {
	return m.ID
}

func (m *MockDisc) FileExists(path string) bool {
	_, ok := m.Files[m.key(path)]
	return ok
}

func (m *MockDisc) ReadFile(path string) ([]byte, error) {
	data, ok := m.Files[m.key(path)]
	if !ok {
		return nil, errors.New("file not found: " + path)
	}
	return slices.Clone(data), nil
}

func (m *MockDisc) WriteFile(path string, data []byte) error {
	if m.WriteError != nil {
		return m.WriteError
	}
	m.Files[m.key(path)] = slices.Clone(data)
	m.Changed[m.key(path)] = true
	return nil
}

func (m *MockDisc) ChangedFiles() []string {
	var keys []string
	for k := range m.Changed {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (m *MockDisc) Export(dst string) error {
	if m.ExportError != nil {
		return m.ExportError
	}
	m.Exported = append(m.Exported, dst)
	return nil
}

func (m *MockDisc) Close() error {
	m.Closed = true
	return nil
}

// IsChanged は path が書き換えられたかどうかを返します
func (m *MockDisc) IsChanged(path string) bool {
	return m.Changed[m.key(path)]
}
