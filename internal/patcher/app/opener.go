package app

import (
	"github.com/shiroemons/go-mkddpatcher/internal/patcher/interfaces"
	"github.com/shiroemons/go-mkddpatcher/pkg/gcm"
)

// gcmOpener はファイルシステム上のディスクイメージを開きます
type gcmOpener struct{}

func (gcmOpener) Open(path string) (interfaces.Disc, error) {
	d, err := gcm.Open(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// cancelCallbacks は確認に常に最初の選択肢で答えます
type cancelCallbacks struct {
	logger interfaces.Logger
}

func (c cancelCallbacks) Message(title, text string) {
	c.logger.Printf("%s: %s\n", title, text)
}

func (c cancelCallbacks) Prompt(title, text string, options []string) string {
	c.logger.Printf("%s: %s\n", title, text)
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

func (c cancelCallbacks) Error(title, text string) {
	c.logger.Printf("%s: %s\n", title, text)
}
