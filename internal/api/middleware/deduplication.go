package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"chuckle-chow/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deduplicator 拒絕在時間窗內重送的 POST，依 X-Request-ID 或請求體雜湊判斷
type Deduplicator struct {
	window time.Duration
	now    func() time.Time
	done   chan struct{}
	once   sync.Once

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewDeduplicator 建立去重器並啟動清理協程
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	d := &Deduplicator{
		window: window,
		now:    time.Now,
		done:   make(chan struct{}),
		seen:   make(map[string]time.Time),
	}
	go d.cleanup(10 * window)
	return d
}

// Middleware gin 中介層
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		fingerprint, ok := d.fingerprint(c)
		if !ok {
			c.Next()
			return
		}

		if d.replayed(fingerprint) {
			common.LogWarn("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
			)
			abortWith(c, common.ErrConflict, nil)
			return
		}
		c.Next()
	}
}

// fingerprint 有 X-Request-ID 時以它為準，否則以路徑加請求體雜湊
func (d *Deduplicator) fingerprint(c *gin.Context) (string, bool) {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return "id:" + c.Request.URL.Path + ":" + id, true
	}
	if c.Request.Body == nil {
		return "", false
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.LogError("Failed to read request body", zap.Error(err))
		return "", false
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	hash := sha256.Sum256(body)
	return "body:" + c.Request.URL.Path + ":" + hex.EncodeToString(hash[:]), true
}

func (d *Deduplicator) replayed(fingerprint string) bool {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.seen[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.seen[fingerprint] = now
	return false
}

func (d *Deduplicator) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := d.now()
			d.mu.Lock()
			for k, t := range d.seen {
				if now.Sub(t) > d.window {
					delete(d.seen, k)
				}
			}
			d.mu.Unlock()
		case <-d.done:
			return
		}
	}
}

// Stop 停止清理協程
func (d *Deduplicator) Stop() {
	d.once.Do(func() { close(d.done) })
}
