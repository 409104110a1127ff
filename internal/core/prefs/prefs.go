package prefs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"chuckle-chow/internal/infrastructure/storage"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	ThemeKey   = "theme"
	WelcomeKey = "welcomeDismissed"

	Light = "light"
	Dark  = "dark"
)

// Prefs 主題與歡迎訊息的本地偏好
type Prefs struct {
	kv storage.KV

	mu      sync.Mutex
	theme   string
	welcome bool
}

// Load 從儲存讀入偏好，讀取失敗時使用預設值
func Load(ctx context.Context, kv storage.KV) *Prefs {
	p := &Prefs{kv: kv, theme: Light}

	if raw, err := kv.Get(ctx, ThemeKey); err == nil {
		if t := strings.TrimSpace(string(raw)); t == Dark || t == Light {
			p.theme = t
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		common.LogWarn("failed to read theme", zap.Error(err))
	}

	if raw, err := kv.Get(ctx, WelcomeKey); err == nil {
		p.welcome = strings.TrimSpace(string(raw)) == "true"
	} else if !errors.Is(err, storage.ErrNotFound) {
		common.LogWarn("failed to read welcome flag", zap.Error(err))
	}
	return p
}

// Theme 目前主題
func (p *Prefs) Theme() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// ToggleTheme 切換明暗主題並寫回，回傳新主題
func (p *Prefs) ToggleTheme(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.theme == Dark {
		p.theme = Light
	} else {
		p.theme = Dark
	}
	theme := p.theme
	p.mu.Unlock()

	if err := p.kv.Set(ctx, ThemeKey, []byte(theme)); err != nil {
		return theme, common.NewError(common.ErrCodePersistenceError, "failed to save theme", 0, fmt.Errorf("set %s: %w", ThemeKey, err))
	}
	return theme, nil
}

// WelcomeDismissed 歡迎訊息是否已關閉
func (p *Prefs) WelcomeDismissed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.welcome
}

// DismissWelcome 關閉歡迎訊息
func (p *Prefs) DismissWelcome(ctx context.Context) error {
	p.mu.Lock()
	p.welcome = true
	p.mu.Unlock()

	if err := p.kv.Set(ctx, WelcomeKey, []byte("true")); err != nil {
		return common.NewError(common.ErrCodePersistenceError, "failed to save welcome flag", 0, fmt.Errorf("set %s: %w", WelcomeKey, err))
	}
	return nil
}
