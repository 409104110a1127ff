package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// GenerateRequest POST /generate_recipe 的請求內容
type GenerateRequest struct {
	Ingredients []string `json:"ingredients"`
	IsRandom    bool     `json:"isRandom"`
	RequestID   string   `json:"requestId"`
}

// RateRequest POST /rate_recipe 的請求內容
type RateRequest struct {
	RecipeTitle string `json:"recipe_title" validate:"required"`
	Rating      int    `json:"rating" validate:"min=1,max=5"`
	Comment     string `json:"comment,omitempty" validate:"max=1000"`
}

// Comment GET /recipe_comments 回傳的一則留言
type Comment struct {
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// Options 建立 Client 的選項
type Options struct {
	BaseURL    string
	Timeout    time.Duration // 0 表示不設逾時
	UserAgent  string
	HTTPClient *http.Client
}

// Client 食譜服務的 HTTP 用戶端
type Client struct {
	http    *resty.Client
	baseURL string
	now     func() time.Time
}

// New 建立用戶端
func New(opts Options) *Client {
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "chuckle-chow/1.0"
	}

	rc.SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", ua)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	return &Client{
		http:    rc,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		now:     time.Now,
	}
}

// BaseURL 目前使用的服務位址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GenerateRecipe 呼叫 POST /generate_recipe，附上 cb 參數避免快取
func (c *Client) GenerateRecipe(ctx context.Context, req GenerateRequest) (*recipe.Recipe, error) {
	if req.Ingredients == nil {
		req.Ingredients = []string{}
	}
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", req.RequestID).
		SetQueryParam("cb", strconv.FormatInt(c.now().UnixMilli(), 10)).
		SetBody(req).
		Post("/generate_recipe")
	if err != nil {
		err = networkError(err)
		common.LogServiceCall("/generate_recipe", time.Since(start), err, req.RequestID)
		return nil, err
	}
	if !resp.IsSuccess() {
		err = serviceError(resp)
		common.LogServiceCall("/generate_recipe", time.Since(start), err, req.RequestID)
		return nil, err
	}

	var out recipe.Recipe
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		err = common.NewError(common.ErrCodeInvalidRecipe, "Invalid recipe received from server", resp.StatusCode(), err)
		common.LogServiceCall("/generate_recipe", time.Since(start), err, req.RequestID)
		return nil, err
	}

	common.LogServiceCall("/generate_recipe", time.Since(start), nil, req.RequestID)
	return &out, nil
}

// Elucidate 呼叫 POST /elucidate_recipe，把一段食譜文字整理成食譜
func (c *Client) Elucidate(ctx context.Context, recipeText string) (*recipe.Recipe, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"recipeText": recipeText}).
		Post("/elucidate_recipe")
	if err != nil {
		return nil, networkError(err)
	}
	if !resp.IsSuccess() {
		return nil, serviceError(resp)
	}

	var out recipe.Recipe
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, common.NewError(common.ErrCodeInvalidRecipe, "Invalid recipe received from server", resp.StatusCode(), err)
	}
	return &out, nil
}

// Ingredients 呼叫 GET /ingredients，實作 catalog.Source
func (c *Client) Ingredients(ctx context.Context) (map[string][]catalog.Item, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/ingredients")
	if err != nil {
		return nil, networkError(err)
	}
	if !resp.IsSuccess() {
		return nil, serviceError(resp)
	}

	var out map[string][]catalog.Item
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse ingredients: %w", err)
	}
	return out, nil
}

// Comments 呼叫 GET /recipe_comments
func (c *Client) Comments(ctx context.Context, title string) ([]Comment, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("recipe_title", title).
		Get("/recipe_comments")
	if err != nil {
		return nil, networkError(err)
	}
	if !resp.IsSuccess() {
		return nil, serviceError(resp)
	}

	out := []Comment{}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse comments: %w", err)
	}
	return out, nil
}

// Rate 呼叫 POST /rate_recipe
func (c *Client) Rate(ctx context.Context, req RateRequest) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/rate_recipe")
	if err != nil {
		return networkError(err)
	}
	if !resp.IsSuccess() {
		return serviceError(resp)
	}
	return nil
}

// networkError 傳輸層錯誤（連不上、逾時、被取消）
func networkError(err error) error {
	common.LogDebug("食譜服務傳輸失敗", zap.Error(err))
	return common.NewError(common.ErrCodeNetworkError, "Network error: "+err.Error(), 0, err)
}

// serviceError 解析非 2xx 回應，優先使用 text 其次 error 欄位
func serviceError(resp *resty.Response) error {
	var body struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	_ = json.Unmarshal(resp.Body(), &body)

	msg := body.Text
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("Server error: %d", resp.StatusCode())
	}
	return common.NewError(common.ErrCodeServiceError, msg, resp.StatusCode(), nil)
}
