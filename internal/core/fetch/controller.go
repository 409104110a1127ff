package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chuckle-chow/internal/client"
	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// MsgNoIngredients 沒選食材又不是隨機請求
	MsgNoIngredients = "Pick at least one ingredient, ya lazy bum!"
	// MsgGenericFailure 錯誤沒有訊息時使用
	MsgGenericFailure = "Recipe generation flopped!"
	// DefaultMaxIngredients 單次請求的食材上限
	DefaultMaxIngredients = 7
	// DefaultDebounceWait 防抖等待時間
	DefaultDebounceWait = 500 * time.Millisecond
)

// ErrSuperseded 回應到達時已有更新的請求，結果被丟棄
var ErrSuperseded = errors.New("fetch: superseded by a newer request")

// ErrorKind 錯誤類型，決定畫面是否提供重試
type ErrorKind string

const (
	NoError    ErrorKind = ""
	Validation ErrorKind = "validation"
	Transport  ErrorKind = "transport"
	Service    ErrorKind = "service"
	Semantic   ErrorKind = "semantic"
)

// State 可觀察的狀態
type State struct {
	IsLoading  bool
	Recipe     *recipe.Recipe
	Error      string
	ErrorKind  ErrorKind
	LastRandom bool
	RequestID  string
}

// CanRetry 有錯誤且不是驗證錯誤時可以重試
func (s State) CanRetry() bool {
	return s.ErrorKind != NoError && s.ErrorKind != Validation
}

func (s State) clone() State {
	if s.Recipe != nil {
		r := s.Recipe.Clone()
		s.Recipe = &r
	}
	return s
}

// RecipeService 食譜服務，client.Client 實作此介面
type RecipeService interface {
	GenerateRecipe(ctx context.Context, req client.GenerateRequest) (*recipe.Recipe, error)
}

// Picker 提供目前選擇的食材，catalog.Selection 實作此介面
type Picker interface {
	Ingredients() []string
	Surprise() map[catalog.Category]string
	Clear()
}

// Options 控制器選項
type Options struct {
	MaxIngredients int
	DebounceWait   time.Duration
	Logger         *zap.Logger
	NewRequestID   func() string
}

// Controller 食譜請求控制器
type Controller struct {
	svc    RecipeService
	picker Picker
	max    int
	newID  func() string
	log    *zap.Logger

	mu         sync.Mutex
	state      State
	generation uint64

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int

	pubMu      sync.Mutex
	publishing bool
	pubDirty   bool
	debouncer  *Debouncer
}

// NewController 建立控制器
func NewController(svc RecipeService, picker Picker, opts Options) *Controller {
	if opts.MaxIngredients <= 0 {
		opts.MaxIngredients = DefaultMaxIngredients
	}
	if opts.DebounceWait <= 0 {
		opts.DebounceWait = DefaultDebounceWait
	}
	if opts.Logger == nil {
		opts.Logger = common.Logger
	}
	if opts.NewRequestID == nil {
		opts.NewRequestID = common.GenerateUUID
	}
	return &Controller{
		svc:       svc,
		picker:    picker,
		max:       opts.MaxIngredients,
		newID:     opts.NewRequestID,
		log:       opts.Logger.With(zap.String("component", "fetch")),
		subs:      make(map[int]func(State)),
		debouncer: NewDebouncer(opts.DebounceWait),
	}
}

// State 回傳目前狀態的副本
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe 註冊狀態變更通知，回傳取消函式
func (c *Controller) Subscribe(fn func(State)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

// publish 通知訂閱者，永遠送出當下最新的狀態。
// 回呼在鎖外執行，訂閱者可以在回呼中再呼叫控制器；
// 已有人在派送時只標記 dirty，由派送中的那一方補送最新狀態
func (c *Controller) publish() {
	c.pubMu.Lock()
	c.pubDirty = true
	if c.publishing {
		c.pubMu.Unlock()
		return
	}
	c.publishing = true

	for c.pubDirty {
		c.pubDirty = false
		c.pubMu.Unlock()
		c.deliver()
		c.pubMu.Lock()
	}
	c.publishing = false
	c.pubMu.Unlock()
}

func (c *Controller) deliver() {
	c.subMu.Lock()
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	if len(subs) == 0 {
		return
	}
	s := c.State()
	for _, fn := range subs {
		fn(s.clone())
	}
}

// validate 檢查前置條件
func (c *Controller) validate(ingredients []string, isRandom bool) error {
	if !isRandom && len(ingredients) == 0 {
		return common.NewValidationError(MsgNoIngredients)
	}
	if len(ingredients) > c.max {
		return common.NewValidationError(fmt.Sprintf("Max %d ingredients, ya hog!", c.max))
	}
	return nil
}

// FetchRecipe 驗證選擇後向食譜服務請求食譜並更新狀態
func (c *Controller) FetchRecipe(ctx context.Context, isRandom bool) (err error) {
	ingredients := c.picker.Ingredients()

	if verr := c.validate(ingredients, isRandom); verr != nil {
		c.mu.Lock()
		c.state.IsLoading = false
		c.state.Error = verr.Error()
		c.state.ErrorKind = Validation
		c.mu.Unlock()
		c.publish()
		c.log.Debug("fetch rejected", zap.String("reason", verr.Error()))
		return verr
	}

	req := client.GenerateRequest{
		Ingredients: ingredients,
		IsRandom:    isRandom,
		RequestID:   c.newID(),
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state = State{
		IsLoading:  true,
		LastRandom: isRandom,
		RequestID:  req.RequestID,
	}
	c.mu.Unlock()
	c.publish()

	c.log.Info("fetching recipe",
		zap.Strings("ingredients", ingredients),
		zap.Bool("is_random", isRandom),
		zap.String("request_id", req.RequestID),
		zap.Uint64("generation", gen),
	)

	var got *recipe.Recipe
	var failure error
	defer func() {
		err = c.finish(gen, got, failure)
	}()

	got, failure = c.call(ctx, req)
	if failure == nil && recipe.IsSemanticFailure(got) {
		failure = common.NewError(common.ErrCodeInvalidRecipe, common.ErrInvalidRecipe.Message, 0, nil)
	}
	return nil
}

// call 呼叫服務，服務內的 panic 視為傳輸失敗
func (c *Controller) call(ctx context.Context, req client.GenerateRequest) (got *recipe.Recipe, err error) {
	defer func() {
		if p := recover(); p != nil {
			c.log.Error("recipe service panicked", zap.Any("panic", p), zap.String("request_id", req.RequestID))
			got = nil
			err = common.NewError(common.ErrCodeNetworkError, MsgGenericFailure, 0, fmt.Errorf("panic: %v", p))
		}
	}()
	return c.svc.GenerateRecipe(ctx, req)
}

// finish 套用結果並清除載入中旗標；較舊世代的結果直接丟棄
func (c *Controller) finish(gen uint64, got *recipe.Recipe, failure error) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.log.Debug("discarding stale response", zap.Uint64("generation", gen))
		return ErrSuperseded
	}

	c.state.IsLoading = false
	if failure == nil {
		stored := got.Clone()
		c.state.Recipe = &stored
		c.state.Error = ""
		c.state.ErrorKind = NoError
	} else {
		msg := failureMessage(failure)
		placeholder := recipe.Placeholder(msg)
		c.state.Recipe = &placeholder
		c.state.Error = msg
		c.state.ErrorKind = kindOf(failure)
	}
	reqID := c.state.RequestID
	c.mu.Unlock()
	c.publish()

	if failure != nil {
		c.log.Warn("fetch failed", zap.Error(failure), zap.String("request_id", reqID))
		return failure
	}
	c.log.Info("recipe received", zap.String("title", got.Title), zap.String("request_id", reqID))
	return nil
}

// failureMessage 優先使用服務端訊息，否則使用通用訊息
func failureMessage(err error) string {
	if ce, ok := common.AsCustomError(err); ok && ce.Message != "" {
		return ce.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgGenericFailure
}

func kindOf(err error) ErrorKind {
	switch common.ErrorCode(err) {
	case common.ErrCodeServiceError:
		return Service
	case common.ErrCodeInvalidRecipe:
		return Semantic
	case common.ErrCodeValidation:
		return Validation
	default:
		return Transport
	}
}

// FetchDebounced 防抖後執行 FetchRecipe，執行時才讀取選擇狀態
func (c *Controller) FetchDebounced(ctx context.Context, isRandom bool) {
	c.debouncer.Trigger(func() {
		_ = c.FetchRecipe(ctx, isRandom)
	})
}

// Retry 以上一次的 isRandom 重新請求
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	last := c.state.LastRandom
	c.mu.Unlock()
	return c.FetchRecipe(ctx, last)
}

// Surprise 隨機選擇每個分類的食材後排程一次隨機請求
func (c *Controller) Surprise(ctx context.Context) map[catalog.Category]string {
	picks := c.picker.Surprise()
	c.FetchDebounced(ctx, true)
	return picks
}

// Clear 清空選擇與食譜，進行中的請求結果會被丟棄
func (c *Controller) Clear() {
	c.debouncer.Cancel()
	c.picker.Clear()
	c.mu.Lock()
	c.generation++
	c.state = State{}
	c.mu.Unlock()
	c.publish()
}

// Pending 是否有等待中的防抖請求
func (c *Controller) Pending() bool {
	return c.debouncer.Pending()
}
