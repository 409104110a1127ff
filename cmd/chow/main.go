package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chuckle-chow/internal/client"
	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/favorites"
	"chuckle-chow/internal/core/feedback"
	"chuckle-chow/internal/core/fetch"
	"chuckle-chow/internal/core/notice"
	"chuckle-chow/internal/core/prefs"
	"chuckle-chow/internal/core/share"
	"chuckle-chow/internal/infrastructure/config"
	"chuckle-chow/internal/infrastructure/storage"
	"chuckle-chow/internal/pkg/common"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	envFile := pflag.String("env-file", "", "path to a .env file")
	baseURL := pflag.String("base-url", "", "recipe service address, overrides config")
	language := pflag.String("lang", "english", "message language (english|spanish)")
	logLevel := pflag.String("log-level", "", "log level, overrides config")
	pflag.Parse()

	cfg, err := config.Load(config.Options{EnvFile: *envFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// 日誌寫到 stderr，stdout 留給互動畫面
	if err := common.InitLogger(common.LogOptions{
		Level:   cfg.LogLevel,
		File:    cfg.Log.File,
		Console: os.Stderr,
		Mode:    cfg.Log.Mode,
		Service: "chuckle-chow-cli",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base := cfg.ResolveBaseURL()
	if *baseURL != "" {
		base = *baseURL
	}
	api := client.New(client.Options{BaseURL: base, Timeout: cfg.API.Timeout})
	common.LogInfo("Using recipe service", zap.String("base_url", api.BaseURL()))

	in := bufio.NewScanner(os.Stdin)
	out := os.Stdout
	notifier := notice.NotifierFunc(func(n notice.Notice) {
		fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
	})

	// 儲存打不開時以記憶體繼續，本次變更不會保存
	kv, err := storage.Open(cfg.Storage)
	if err != nil {
		notifier.Notify(notice.Notice{
			Level:   notice.Warning,
			Message: "Couldn't open saved favorites, changes this session won't be kept.",
		})
	}
	defer kv.Close()

	cat := catalog.Load(ctx, api)
	sel := catalog.NewSelection(cat)

	shell := &app{
		in:  in,
		out: out,
		sel: sel,
		ctrl: fetch.NewController(api, sel, fetch.Options{
			MaxIngredients: cfg.Client.MaxIngredients,
			DebounceWait:   cfg.Client.DebounceWait,
		}),
		favs: favorites.NewStore(kv, favorites.Options{Notifier: notifier, Language: *language}),
		sharer: share.NewAdapter(share.Options{
			AppURL:    cfg.Client.AppURL,
			Opener:    share.BrowserOpener{},
			Presenter: share.PresenterFunc(func(m string) { fmt.Fprintln(out, m) }),
			Notifier:  notifier,
		}),
		copier: share.NewCopier(share.SystemClipboard{}, cfg.Client.CopiedResetAfter, notifier),
		panel:  feedback.NewPanel(api),
		prefs:  prefs.Load(ctx, kv),
		loaded: make(chan struct{}, 1),
	}
	shell.favs.Load(ctx)

	unsubscribe := shell.ctrl.Subscribe(shell.onState)
	defer unsubscribe()

	shell.run(ctx)
}
