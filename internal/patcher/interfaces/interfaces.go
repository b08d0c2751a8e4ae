// Package interfaces はmkddpatcherで使用するインターフェースを定義します
package interfaces

// FileSystem はファイルシステム操作のインターフェース
type FileSystem interface {
	FileExists(filename string) bool
	ReadFile(filename string) ([]byte, error)
	Stat(name string) (FileInfo, error)
	ReadDir(dirname string) ([]DirEntry, error)
}

// FileInfo はファイル情報のインターフェース
type FileInfo interface {
	Name() string
	IsDir() bool
}

// DirEntry はディレクトリエントリのインターフェース
type DirEntry interface {
	Name() string
	IsDir() bool
}

// Logger はログ出力のインターフェース
type Logger interface {
	Printf(format string, a ...any)
}

// Callbacks は利用者への通知と確認を行うインターフェースです
type Callbacks interface {
	// Message は情報を通知します
	Message(title, text string)
	// Prompt は options から1つを選ばせ、選ばれた値を返します
	Prompt(title, text string, options []string) string
	// Error はエラーを通知します
	Error(title, text string)
}

// Disc はパッチ対象のディスクイメージのインターフェース
type Disc interface {
	GameID() string
	FileExists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	ChangedFiles() []string
	Export(dst string) error
	Close() error
}

// DiscOpener はディスクイメージを開くインターフェース
type DiscOpener interface {
	Open(path string) (Disc, error)
}

// PackageSource はMODパッケージの中身を読むためのインターフェース。
// 名前はパッケージのルートからの相対パスで、区切りは "/" です。
type PackageSource interface {
	Name() string
	FileExists(name string) bool
	DirExists(name string) bool
	ReadFile(name string) ([]byte, error)
	Close() error
}
