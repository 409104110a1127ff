package recipe

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/chef"
	"chuckle-chow/internal/core/ratings"
	"chuckle-chow/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const noStore = "no-store, no-cache, must-revalidate, max-age=0"

// GenerateRequest POST /generate_recipe
type GenerateRequest struct {
	Ingredients []string `json:"ingredients"`
	IsRandom    bool     `json:"isRandom"`
	RequestID   string   `json:"requestId"`
}

// ElucidateRequest POST /elucidate_recipe
type ElucidateRequest struct {
	RecipeText string `json:"recipeText"`
}

// Handler 食譜服務的處理程序
type Handler struct {
	kitchen *chef.Kitchen
	catalog *catalog.Catalog
	ratings ratings.Store
}

// NewHandler 建立處理程序
func NewHandler(kitchen *chef.Kitchen, cat *catalog.Catalog, store ratings.Store) *Handler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Handler{kitchen: kitchen, catalog: cat, ratings: store}
}

// Welcome GET /api
func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Chuckle & Chow API"})
}

// Ingredients GET /ingredients
func (h *Handler) Ingredients(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.ByServerKey())
}

// GenerateRecipe POST /generate_recipe，生成失敗仍回 200 並以 Error Recipe 表示
func (h *Handler) GenerateRecipe(c *gin.Context) {
	var req GenerateRequest
	if !bindText(c, &req) {
		return
	}

	reqID := req.RequestID
	if reqID == "" {
		reqID = requestid.Get(c)
	}
	common.LogDebug("Received generate_recipe request",
		zap.Strings("ingredients", req.Ingredients),
		zap.Bool("is_random", req.IsRandom),
		zap.String("request_id", reqID),
	)

	r, err := h.kitchen.Cook(c.Request.Context(), req.Ingredients, req.IsRandom)
	if err != nil {
		common.LogError("Failed to generate recipe", zap.Error(err), zap.String("request_id", reqID))
		r = chef.Failed(err)
	} else {
		common.LogInfo("Generated recipe", zap.String("title", r.Title), zap.String("request_id", reqID))
	}

	c.Header("Cache-Control", noStore)
	c.JSON(http.StatusOK, r)
}

// ElucidateRecipe POST /elucidate_recipe
func (h *Handler) ElucidateRecipe(c *gin.Context) {
	var req ElucidateRequest
	if !bindText(c, &req) {
		return
	}
	if strings.TrimSpace(req.RecipeText) == "" {
		textError(c, http.StatusBadRequest, "Server error: Missing recipeText in request body")
		return
	}

	r, err := h.kitchen.Elucidate(c.Request.Context(), req.RecipeText)
	if err != nil {
		common.LogError("Failed to elucidate recipe", zap.Error(err))
		textError(c, http.StatusInternalServerError, "Server error: Failed to elucidate recipe")
		return
	}

	c.Header("Cache-Control", noStore)
	c.JSON(http.StatusOK, r)
}

// bindText 以 ShouldBindJSON 解析，失敗時以 {text} 回應
func bindText(c *gin.Context, v interface{}) bool {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		textError(c, http.StatusRequestEntityTooLarge, "Server error: "+err.Error())
	case errors.Is(err, io.EOF):
		textError(c, http.StatusBadRequest, "Server error: No JSON data provided in request body")
	case errors.As(err, &typeErr) && typeErr.Field == "ingredients":
		textError(c, http.StatusBadRequest, "Server error: Ingredients must be a list of strings")
	default:
		textError(c, http.StatusBadRequest, "Server error: Invalid JSON format - "+err.Error())
	}
	return false
}

func textError(c *gin.Context, status int, msg string) {
	c.Header("Cache-Control", noStore)
	c.AbortWithStatusJSON(status, gin.H{"text": msg})
}
