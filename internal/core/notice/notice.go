package notice

import (
	"context"
	"sync"
)

// Level 提示等級
type Level string

const (
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Notice 給使用者看的一則提示
type Notice struct {
	Level   Level
	Message string
}

// Notifier 顯示提示訊息（瀏覽器中的 alert）
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc 讓函式實作 Notifier
type NotifierFunc func(Notice)

// Notify 實作 Notifier
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Confirmer 向使用者詢問是或否
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc 讓函式實作 Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm 實作 Confirmer
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Always 固定回答的 Confirmer
type Always bool

// Confirm 實作 Confirmer
func (a Always) Confirm(context.Context, string) bool { return bool(a) }

// Nop 不做任何事的 Notifier
type Nop struct{}

// Notify 實作 Notifier
func (Nop) Notify(Notice) {}

// Recorder 記錄所有提示，測試與 CLI 都會用到
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify 實作 Notifier
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// All 回傳目前記錄的提示副本
func (r *Recorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Messages 只回傳訊息文字
func (r *Recorder) Messages() []string {
	all := r.All()
	out := make([]string, 0, len(all))
	for _, n := range all {
		out = append(out, n.Message)
	}
	return out
}

// Or 回傳 n，若為 nil 則回傳 Nop
func Or(n Notifier) Notifier {
	if n == nil {
		return Nop{}
	}
	return n
}
