package share

import (
	"context"
	"fmt"
	"strings"

	"chuckle-chow/internal/core/notice"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultAppURL 分享訊息中附帶的網址
const DefaultAppURL = "https://chuckle-and-chow.onrender.com/"

const (
	msgShareFailed  = "Failed to share recipe."
	emailSubject    = "Check out this recipe!"
	unsupportedHint = "Sharing not supported. Copy this: "
	nativeFailHint  = "Sharing failed. Copy this: "
)

// Platform 分享目標
type Platform string

const (
	Native   Platform = ""
	Facebook Platform = "facebook"
	X        Platform = "x"
	WhatsApp Platform = "whatsapp"
	Email    Platform = "email"
)

// ParsePlatform 解析平台名稱，twitter 視為 x，空字串或 default 為系統分享
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default", "native":
		return Native, nil
	case "facebook", "fb":
		return Facebook, nil
	case "x", "twitter":
		return X, nil
	case "whatsapp", "wa":
		return WhatsApp, nil
	case "email", "mail":
		return Email, nil
	default:
		return Native, fmt.Errorf("unknown share platform %q", name)
	}
}

// Opener 開啟網址（瀏覽器、mailto 處理程式）
type Opener interface {
	Open(ctx context.Context, url string) error
}

// NativeSharer 系統分享面板
type NativeSharer interface {
	Share(ctx context.Context, title, text, url string) error
}

// Presenter 顯示需要使用者手動複製的訊息
type Presenter interface {
	Present(message string)
}

// PresenterFunc 讓函式實作 Presenter
type PresenterFunc func(string)

// Present 實作 Presenter
func (f PresenterFunc) Present(message string) { f(message) }

// Options 分享轉接器選項
type Options struct {
	AppURL    string
	Opener    Opener
	Native    NativeSharer // nil 表示不支援
	Presenter Presenter
	Notifier  notice.Notifier
	Logger    *zap.Logger
}

// Adapter 將食譜分享到各平台
type Adapter struct {
	appURL    string
	opener    Opener
	native    NativeSharer
	presenter Presenter
	notifier  notice.Notifier
	log       *zap.Logger
}

// NewAdapter 建立分享轉接器
func NewAdapter(opts Options) *Adapter {
	if opts.AppURL == "" {
		opts.AppURL = DefaultAppURL
	}
	if opts.Logger == nil {
		opts.Logger = common.Logger
	}
	return &Adapter{
		appURL:    opts.AppURL,
		opener:    opts.Opener,
		native:    opts.Native,
		presenter: opts.Presenter,
		notifier:  notice.Or(opts.Notifier),
		log:       opts.Logger.With(zap.String("component", "share")),
	}
}

// Text 食譜的標準分享文字
func (a *Adapter) Text(r recipe.Recipe) string {
	return recipe.ShareText(r)
}

// FullMessage 分享文字加上 app 網址
func (a *Adapter) FullMessage(r recipe.Recipe) string {
	return a.Text(r) + "\nCheck out my app: " + a.appURL
}

// URL 組出平台的分享網址
func (a *Adapter) URL(r recipe.Recipe, p Platform) (string, error) {
	enc := common.EncodeURIComponent
	switch p {
	case Facebook:
		return "https://www.facebook.com/sharer/sharer.php?u=" + enc(a.appURL) + "&quote=" + enc(a.Text(r)), nil
	case X:
		return "https://x.com/intent/tweet?text=" + enc(a.FullMessage(r)), nil
	case WhatsApp:
		return "https://wa.me/?text=" + enc(a.FullMessage(r)), nil
	case Email:
		return "mailto:?subject=" + enc(emailSubject) + "&body=" + enc(a.FullMessage(r)), nil
	default:
		return "", fmt.Errorf("platform %q has no share url", p)
	}
}

// Share 分享食譜；失敗時以提示告知，不重試
func (a *Adapter) Share(ctx context.Context, r recipe.Recipe, p Platform) error {
	if p != Native {
		link, err := a.URL(r, p)
		if err == nil {
			if a.opener == nil {
				err = fmt.Errorf("no url opener configured")
			} else {
				err = a.opener.Open(ctx, link)
			}
		}
		if err != nil {
			return a.fail(p, err)
		}
		a.log.Info("recipe shared", zap.String("platform", string(p)), zap.String("title", r.Title))
		return nil
	}

	if a.native != nil {
		title := r.Title
		if title == "" {
			title = "Recipe"
		}
		if err := a.native.Share(ctx, title, a.Text(r), a.appURL); err != nil {
			a.log.Warn("native share failed", zap.Error(err))
			a.present(nativeFailHint + a.FullMessage(r))
			return common.NewError(common.ErrCodeShareError, msgShareFailed, 0, err)
		}
		return nil
	}

	a.present(unsupportedHint + a.FullMessage(r))
	return nil
}

func (a *Adapter) present(msg string) {
	if a.presenter != nil {
		a.presenter.Present(msg)
		return
	}
	a.notifier.Notify(notice.Notice{Level: notice.Info, Message: msg})
}

func (a *Adapter) fail(p Platform, err error) error {
	a.log.Warn("share failed", zap.String("platform", string(p)), zap.Error(err))
	a.notifier.Notify(notice.Notice{Level: notice.Error, Message: msgShareFailed})
	return common.NewError(common.ErrCodeShareError, msgShareFailed, 0, err)
}
