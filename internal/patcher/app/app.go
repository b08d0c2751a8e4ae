// Package app はMODパッケージをディスクイメージに取り込む処理全体を実装します
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shiroemons/go-mkddpatcher/internal/patcher/audio"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/config"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/course"
	perrors "github.com/shiroemons/go-mkddpatcher/internal/patcher/errors"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/fileutil"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/interfaces"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/minimap"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/models"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/modpack"
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/tables"
	"github.com/shiroemons/go-mkddpatcher/pkg/gcm"
)

// 確認ダイアログのタイトルと選択肢
const (
	PromptOverwrite = "Overwrite"
	PromptDuplicate = "Duplicate Track"

	OptionCancel    = "Cancel"
	OptionOverwrite = "Overwrite"
	OptionContinue  = "Continue"

	TitleFinished = "Finished"
)

// App はMODパッケージの取り込みを管理します
type App struct {
	config    *config.Config
	logger    interfaces.Logger
	fs        interfaces.FileSystem
	opener    interfaces.DiscOpener
	callbacks interfaces.Callbacks
	tables    *tables.Tables
}

// Options はAppの設定オプション
type Options struct {
	FileSystem interfaces.FileSystem
	DiscOpener interfaces.DiscOpener
	Callbacks  interfaces.Callbacks
	Logger     interfaces.Logger
	// Tables が nil の場合は組み込みのテーブル（または config の MinimapTable）を読み込む
	Tables *tables.Tables
}

// New は新しいAppを作成します
func New(cfg *config.Config) *App {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions は新しいAppをオプション付きで作成します
func NewWithOptions(cfg *config.Config, opts Options) *App {
	var logger interfaces.Logger = config.NewDebugLogger(cfg.DebugMode)
	if opts.Logger != nil {
		logger = opts.Logger
	}

	fs := opts.FileSystem
	if fs == nil {
		fs = fileutil.NewOSFileSystem()
	}

	var opener interfaces.DiscOpener = gcmOpener{}
	if opts.DiscOpener != nil {
		opener = opts.DiscOpener
	}

	var callbacks interfaces.Callbacks = cancelCallbacks{logger: logger}
	if opts.Callbacks != nil {
		callbacks = opts.Callbacks
	}

	return &App{
		config:    cfg,
		logger:    logger,
		fs:        fs,
		opener:    opener,
		callbacks: callbacks,
		tables:    opts.Tables,
	}
}

// Run はすべてのMODパッケージをディスクイメージに取り込み、新しいディスクイメージを書き出します。
// 失敗した場合は Error コールバックで通知してからエラーを返します。中止した場合は通知しません。
func (a *App) Run(ctx context.Context) error {
	summary, err := a.run(ctx)
	if err != nil {
		if !errors.Is(err, ErrCancelled) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			a.callbacks.Error(perrors.KindOf(err).Title(), err.Error())
		}
		return err
	}
	a.callbacks.Message(TitleFinished, summary)
	return nil
}

func (a *App) run(ctx context.Context) (string, error) {
	if err := a.config.Validate(); err != nil {
		return "", err
	}
	tbl, err := a.loadTables()
	if err != nil {
		return "", err
	}
	if err := a.confirmOverwrite(); err != nil {
		return "", err
	}

	paths, err := fileutil.ExpandPackages(a.fs, a.config.Packages, a.config.FolderMode)
	if err != nil {
		return "", err
	}

	// コンテキストのキャンセルチェック
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	a.logger.Printf("ディスクイメージ %s を開きます\n", a.config.InputPath)
	disc, err := a.opener.Open(a.config.InputPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrOpenDisc, a.config.InputPath, err)
	}
	defer disc.Close()

	gameID := disc.GameID()
	region, ok := tbl.Region(gameID)
	if !ok {
		return "", perrors.New(perrors.UnrecognizedRegion, "open", a.config.InputPath,
			fmt.Errorf("game id %q is not Mario Kart: Double Dash!! (US, PAL or JP)", gameID))
	}
	a.logger.Printf("ゲームID %s (%s)\n", gameID, region)

	resolver := modpack.NewResolver(tbl, a.logger)
	m := &merger{
		disc:    disc,
		region:  region,
		logger:  a.logger,
		minimap: minimap.New(tbl),
	}

	var patched []*models.TrackPackage
	seen := make(map[string]*models.TrackPackage)
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		pkg, err := a.resolve(resolver, p)
		if err != nil {
			return "", err
		}
		if prev, ok := seen[pkg.Slot.Name]; ok {
			text := fmt.Sprintf("%s and %s both replace %s. The track from %s will be used.",
				prev.Source, pkg.Source, pkg.Slot.Name, pkg.Source)
			if a.callbacks.Prompt(PromptDuplicate, text, []string{OptionCancel, OptionContinue}) != OptionContinue {
				return "", ErrCancelled
			}
		}
		seen[pkg.Slot.Name] = pkg

		if err := m.merge(pkg); err != nil {
			return "", fmt.Errorf("%s: %w", pkg.Source, err)
		}
		pkg.Release()
		patched = append(patched, pkg)
	}

	if _, err := audio.New(tbl, a.logger).Rebuild(disc); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	a.logger.Printf("変更したファイル: %s\n", strings.Join(disc.ChangedFiles(), ", "))
	if err := disc.Export(a.config.OutputPath); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExport, a.config.OutputPath, err)
	}
	a.logger.Printf("%s に書き出しました\n", a.config.OutputPath)

	return summarize(a.config.OutputPath, patched), nil
}

// loadTables は固定テーブルを読み込みます
func (a *App) loadTables() (*tables.Tables, error) {
	if a.tables != nil {
		return a.tables, nil
	}
	var (
		t   *tables.Tables
		err error
	)
	if a.config.MinimapTable != "" {
		t, err = tables.LoadMinimapFile(a.config.MinimapTable)
	} else {
		t, err = tables.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTables, err)
	}
	if !t.HasMinimap() {
		a.logger.Printf("ミニマップのアドレス表が指定されていません\n")
	}
	a.tables = t
	return t, nil
}

// confirmOverwrite は出力先が既に存在する場合に上書きしてよいか確認します
func (a *App) confirmOverwrite() error {
	out := a.config.OutputPath
	var text string
	switch {
	case fileutil.SamePath(a.config.InputPath, out):
		text = fmt.Sprintf("The output path is the same as the input disc. %s will be replaced.", out)
	case a.fs.FileExists(out):
		text = fmt.Sprintf("%s already exists. Do you want to replace it?", out)
	default:
		return nil
	}
	if a.callbacks.Prompt(PromptOverwrite, text, []string{OptionCancel, OptionOverwrite}) != OptionOverwrite {
		return ErrCancelled
	}
	return nil
}

// resolve はMODパッケージを開いて読み込みます
func (a *App) resolve(r *modpack.Resolver, path string) (*models.TrackPackage, error) {
	src, err := modpack.Open(a.fs, path, a.config.FolderMode)
	if err != nil {
		return nil, perrors.New(perrors.ManifestIncomplete, "open package", path, err)
	}
	defer src.Close()
	return r.Resolve(src)
}

// summarize は完了メッセージを作成します
func summarize(output string, pkgs []*models.TrackPackage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patched %d track(s) into %s:\n", len(pkgs), output)
	for _, p := range pkgs {
		fmt.Fprintf(&b, "- '%s' by %s replaces %s\n", p.TrackName, p.Author, p.Slot.Name)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// merger は1つのMODパッケージをディスクイメージに書き込みます
type merger struct {
	disc    interfaces.Disc
	region  models.Region
	logger  interfaces.Logger
	minimap *minimap.Patcher
}

func (m *merger) write(path string, data []byte) error {
	if err := m.disc.WriteFile(path, data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteDisc, path, err)
	}
	m.logger.Printf("replacing %s\n", path)
	return nil
}

// merge はスタッフゴースト、コース、ミニマップ、コース画像、ラップ音楽の順に書き込みます
func (m *merger) merge(pkg *models.TrackPackage) error {
	slot := pkg.Slot

	if err := m.write(course.StaffGhostPath(slot), pkg.StaffGhost); err != nil {
		return err
	}

	single, multi, err := course.BuildTrackArchives(pkg)
	if err != nil {
		return err
	}
	if err := m.write(course.CoursePath(slot, false), single); err != nil {
		return err
	}
	if err := m.write(course.CoursePath(slot, true), multi); err != nil {
		return err
	}

	exe, err := m.disc.ReadFile(gcm.MainDOL)
	if err != nil {
		return perrors.New(perrors.AssetMissing, "read", gcm.MainDOL, err)
	}
	if exe, err = m.minimap.Patch(exe, m.region, slot, pkg.Calibration); err != nil {
		return err
	}
	if err := m.write(gcm.MainDOL, exe); err != nil {
		return err
	}

	for _, lang := range models.Languages {
		if !course.HasLanguage(m.disc, lang) {
			m.logger.Printf("%s: disc has no %s scene data, skipped\n", pkg.Source, lang)
			continue
		}
		assets, src, ok := pkg.ImagesFor(lang)
		if !ok {
			continue
		}
		if err := course.InjectTextures(m.disc, lang, slot, assets); err != nil {
			return err
		}
		m.logger.Printf("%s: %s course images from %s\n", pkg.Source, lang, src)
	}

	normal, fast := pkg.LapMusic()
	if normal != nil {
		if err := m.write(audio.StreamPath(pkg.MusicSlot.NormalMusic), normal); err != nil {
			return err
		}
	}
	if fast != nil {
		if err := m.write(audio.StreamPath(pkg.MusicSlot.FastMusic), fast); err != nil {
			return err
		}
	}
	return nil
}
