package fetch

import (
	"sync"
	"time"
)

// Debouncer 尾端防抖：連續呼叫只執行最後一次
type Debouncer struct {
	mu    sync.Mutex
	wait  time.Duration
	timer *time.Timer
	seq   uint64
}

// NewDebouncer 建立防抖器
func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger 重設計時器，wait 之後在新的 goroutine 執行 fn
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	mine := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() {
		// Stop 無法攔下已經觸發的計時器，用序號再確認一次
		d.mu.Lock()
		latest := mine == d.seq
		if latest {
			d.timer = nil
		}
		d.mu.Unlock()
		if latest {
			fn()
		}
	})
}

// Cancel 取消尚未執行的呼叫
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending 是否有等待中的呼叫
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
