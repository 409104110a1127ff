package share

import (
	"context"
	"io"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

// BrowserOpener 以系統預設瀏覽器開啟網址
type BrowserOpener struct{}

func init() {
	// 瀏覽器程序的輸出不要混進終端畫面
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Open 實作 Opener
func (BrowserOpener) Open(_ context.Context, url string) error {
	return browser.OpenURL(url)
}

// SystemClipboard 系統剪貼簿
type SystemClipboard struct{}

// WriteAll 實作 Clipboard
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}
