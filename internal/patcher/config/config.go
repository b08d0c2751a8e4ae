// Package config はmkddpatcherコマンドの設定管理を行います
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const Version = "0.1.0"

// Config はアプリケーションの設定を保持します
type Config struct {
	InputPath    string
	OutputPath   string
	Packages     []string
	FolderMode   bool
	MinimapTable string
	AssumeYes    bool
	DebugMode    bool
}

// Settings は設定ファイルの内容です。コマンドラインで指定した値が優先されます。
type Settings struct {
	OutputPath   string `toml:"output"`
	FolderMode   bool   `toml:"folder_mode"`
	MinimapTable string `toml:"minimap_table"`
	AssumeYes    bool   `toml:"assume_yes"`
	Debug        bool   `toml:"debug"`
}

// DefaultSettingsPath は設定ファイルの既定のパスを返します
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mkddpatcher", "config.toml"), nil
}

// LoadSettings は設定ファイルを読み込みます。ファイルが存在しない場合は空の設定を返します。
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("%w: %w", ErrLoadSettings, err)
	}
	return s, nil
}

// Apply は設定ファイルの値を反映します。explicit が true を返すフラグは上書きしません。
func (c *Config) Apply(s Settings, explicit func(flag string) bool) {
	if !explicit("output") && c.OutputPath == "" {
		c.OutputPath = s.OutputPath
	}
	if !explicit("folder") {
		c.FolderMode = c.FolderMode || s.FolderMode
	}
	if !explicit("minimap-table") && c.MinimapTable == "" {
		c.MinimapTable = s.MinimapTable
	}
	if !explicit("yes") {
		c.AssumeYes = c.AssumeYes || s.AssumeYes
	}
	if !explicit("debug") {
		c.DebugMode = c.DebugMode || s.Debug
	}
}

// Validate は必須の設定がそろっているか検証します
func (c *Config) Validate() error {
	switch {
	case c.InputPath == "":
		return ErrNoInput
	case c.OutputPath == "":
		return ErrNoOutput
	case len(c.Packages) == 0:
		return ErrNoPackages
	}
	return nil
}

// DebugLogger はデバッグ出力を管理します
type DebugLogger struct {
	enabled bool
	w       io.Writer
}

// NewDebugLogger は新しいDebugLoggerを作成します
func NewDebugLogger(enabled bool) *DebugLogger {
	return NewDebugLoggerTo(enabled, os.Stderr)
}

// NewDebugLoggerTo は出力先を指定してDebugLoggerを作成します
func NewDebugLoggerTo(enabled bool, w io.Writer) *DebugLogger {
	return &DebugLogger{enabled: enabled, w: w}
}

// Printf はデバッグモードが有効な場合のみメッセージを表示します
func (d *DebugLogger) Printf(format string, a ...any) {
	if d.enabled {
		fmt.Fprintf(d.w, format, a...)
	}
}
