package share

import (
	"context"
	"errors"
	"sync"
	"time"

	"chuckle-chow/internal/core/notice"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// DefaultCopiedResetAfter copied 旗標維持的時間
	DefaultCopiedResetAfter = 2 * time.Second
	msgClipboardFailed      = "Clipboard failed"
)

var errClipboardUnsupported = errors.New("clipboard is not supported on this system")

// Clipboard 剪貼簿寫入
type Clipboard interface {
	WriteAll(text string) error
}

// Copier 複製分享文字，成功後 Copied 在一段時間內為 true
type Copier struct {
	clip       Clipboard
	resetAfter time.Duration
	notifier   notice.Notifier

	mu     sync.Mutex
	copied bool
	seq    uint64
	timer  *time.Timer
}

// NewCopier 建立複製器
func NewCopier(clip Clipboard, resetAfter time.Duration, n notice.Notifier) *Copier {
	if resetAfter <= 0 {
		resetAfter = DefaultCopiedResetAfter
	}
	return &Copier{clip: clip, resetAfter: resetAfter, notifier: notice.Or(n)}
}

// Copy 複製食譜的標準分享文字
func (c *Copier) Copy(ctx context.Context, r recipe.Recipe) error {
	return c.CopyText(ctx, recipe.ShareText(r))
}

// CopyText 複製任意文字
func (c *Copier) CopyText(_ context.Context, text string) error {
	if c.clip == nil {
		return c.fail(errClipboardUnsupported)
	}
	if err := c.clip.WriteAll(text); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	mine := c.seq
	c.copied = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.resetAfter, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// 期間又複製過就交給新的計時器
		if c.seq == mine {
			c.copied = false
			c.timer = nil
		}
	})
	return nil
}

// Copied 最近是否複製成功
func (c *Copier) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copied
}

func (c *Copier) fail(err error) error {
	common.LogWarn("clipboard write failed", zap.Error(err))
	c.notifier.Notify(notice.Notice{Level: notice.Error, Message: msgClipboardFailed})
	return common.NewError(common.ErrCodeShareError, msgClipboardFailed, 0, err)
}
