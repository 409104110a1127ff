package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chuckle-chow/internal/core/ratings"
	"chuckle-chow/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RateRequest POST /rate_recipe，以 recipe_title 或 recipe_id 指定食譜
type RateRequest struct {
	RecipeTitle string          `json:"recipe_title"`
	RecipeID    json.RawMessage `json:"recipe_id"`
	Rating      *int            `json:"rating" binding:"required,min=1,max=5"`
	Comment     string          `json:"comment" binding:"max=1000"`
}

// key 食譜鍵，title 優先
func (r RateRequest) key() string {
	if t := strings.TrimSpace(r.RecipeTitle); t != "" {
		return t
	}
	if len(r.RecipeID) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(r.RecipeID, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(r.RecipeID, &n) == nil {
		return n.String()
	}
	return ""
}

// RateRecipe POST /rate_recipe
func (h *Handler) RateRecipe(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &verrs) && verrs[0].Field() == "Rating" && verrs[0].Tag() == "required":
			textError(c, http.StatusBadRequest, "Server error: Missing recipe_title or rating in request body")
		case errors.As(err, &verrs) && verrs[0].Field() == "Rating",
			errors.As(err, &typeErr) && typeErr.Field == "rating":
			textError(c, http.StatusBadRequest, "Server error: Rating must be an integer between 1 and 5")
		case errors.As(err, &verrs):
			textError(c, http.StatusBadRequest, "Server error: Comment is too long")
		default:
			textError(c, http.StatusBadRequest, "Server error: Invalid JSON format - "+err.Error())
		}
		return
	}

	key := req.key()
	if key == "" {
		textError(c, http.StatusBadRequest, "Server error: Missing recipe_title or rating in request body")
		return
	}

	sum, err := h.ratings.Rate(c.Request.Context(), key, *req.Rating, req.Comment)
	if err != nil {
		common.LogError("Error in rate_recipe", zap.Error(err), zap.String("recipe", key))
		textError(c, http.StatusInternalServerError, fmt.Sprintf("Server error: %v", err))
		return
	}
	common.LogInfo("Recipe rated",
		zap.String("recipe", key),
		zap.Int("rating", *req.Rating),
		zap.Float64("average", sum.Average),
		zap.Int("count", sum.Count),
	)

	c.Header("Cache-Control", noStore)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Rating submitted successfully",
		"rating":       sum.Average,
		"rating_count": sum.Count,
	})
}

// RecipeComments GET /recipe_comments?recipe_title=
func (h *Handler) RecipeComments(c *gin.Context) {
	key := strings.TrimSpace(c.Query("recipe_title"))
	if key == "" {
		key = strings.TrimSpace(c.Query("recipe_id"))
	}
	if key == "" {
		textError(c, http.StatusBadRequest, "Server error: Missing recipe_title query parameter")
		return
	}

	comments, err := h.ratings.Comments(c.Request.Context(), key)
	if err != nil {
		common.LogError("Error in recipe_comments", zap.Error(err), zap.String("recipe", key))
		textError(c, http.StatusInternalServerError, fmt.Sprintf("Server error: %v", err))
		return
	}
	if comments == nil {
		comments = []ratings.Comment{}
	}

	c.Header("Cache-Control", noStore)
	c.JSON(http.StatusOK, comments)
}
