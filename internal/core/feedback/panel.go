package feedback

import (
	"context"
	"strings"
	"sync"

	"chuckle-chow/internal/client"
	"chuckle-chow/internal/pkg/common"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	MsgInvalidRating  = "Pick a rating between 1 and 5 stars, ya varmint!"
	MsgRateFailed     = "Rating submission flopped - try again, partner!"
	MsgCommentsFailed = "Couldn't load comments - blame the saloon fight!"
	MsgNoComments     = "No comments yet - be the first to holler!"
)

// Service 評分與留言的遠端服務，client.Client 實作此介面
type Service interface {
	Rate(ctx context.Context, req client.RateRequest) error
	Comments(ctx context.Context, title string) ([]client.Comment, error)
}

// State 面板狀態
type State struct {
	Comments []client.Comment
	Error    string
	Title    string
}

// Panel 目前食譜的評分與留言面板
type Panel struct {
	svc      Service
	validate *validator.Validate

	mu    sync.Mutex
	state State
}

// NewPanel 建立面板
func NewPanel(svc Service) *Panel {
	return &Panel{svc: svc, validate: validator.New()}
}

// State 回傳目前狀態副本
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Comments = append([]client.Comment(nil), p.state.Comments...)
	return s
}

// Rate 送出評分，成功後清除錯誤並重新載入留言
func (p *Panel) Rate(ctx context.Context, title string, rating int, comment string) error {
	req := client.RateRequest{
		RecipeTitle: strings.TrimSpace(title),
		Rating:      rating,
		Comment:     strings.TrimSpace(comment),
	}
	if err := p.validate.Struct(req); err != nil {
		common.LogDebug("rating rejected", zap.Error(err))
		p.setError(MsgInvalidRating)
		return common.NewValidationError(MsgInvalidRating)
	}

	if err := p.svc.Rate(ctx, req); err != nil {
		common.LogWarn("rating submission failed", zap.Error(err), zap.String("title", req.RecipeTitle))
		p.setError(MsgRateFailed)
		return err
	}

	p.setError("")
	_, err := p.LoadComments(ctx, req.RecipeTitle)
	return err
}

// LoadComments 取得食譜的留言
func (p *Panel) LoadComments(ctx context.Context, title string) ([]client.Comment, error) {
	comments, err := p.svc.Comments(ctx, title)
	if err != nil {
		common.LogWarn("failed to load comments", zap.Error(err), zap.String("title", title))
		p.setError(MsgCommentsFailed)
		return nil, err
	}

	p.mu.Lock()
	p.state.Title = title
	p.state.Comments = comments
	p.mu.Unlock()
	return append([]client.Comment(nil), comments...), nil
}

// Reset 切換食譜時清空面板
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = State{}
}

func (p *Panel) setError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Error = msg
}
