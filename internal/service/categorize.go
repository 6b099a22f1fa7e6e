package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Hodaren2022/aitravel-backend/internal/domain"
)

// categorizePrompt asks for a bare category name so the reply needs no
// parsing beyond cleanup.
const categorizePrompt = `請將以下費用描述分類到最合適的類別。

可用類別：餐飲、交通、購物、住宿、娛樂、其他

分類規則：
- 餐飲：食物、飲料、餐廳、小吃、咖啡
- 交通：車票、機票、計程車、捷運、加油、停車
- 購物：紀念品、衣物、日用品、伴手禮
- 住宿：飯店、民宿、旅館、露營
- 娛樂：門票、景點、表演、活動、遊樂園
- 其他：無法歸入以上類別的費用

請只回覆類別名稱，不要包含任何其他文字。

費用描述：%s`

// replyPunctuation strips the CJK punctuation the model sometimes appends.
var replyPunctuation = regexp.MustCompile(`[。，、：；\s]`)

// TextGenerator produces plain-text completions.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Categorizer assigns expense descriptions to one of the six fixed
// categories via the model, caching results per description so repeated
// descriptions cost one call.
type Categorizer struct {
	generator TextGenerator
	cache     *gocache.Cache
	log       *slog.Logger
}

// NewCategorizer wires a Categorizer; cached categories live for an hour.
func NewCategorizer(generator TextGenerator, log *slog.Logger) *Categorizer {
	return &Categorizer{
		generator: generator,
		cache:     gocache.New(1*time.Hour, 10*time.Minute),
		log:       log,
	}
}

// Categorize returns the category for description. The model's reply is
// cleaned and fuzzy-matched against the known categories; anything
// unrecognized falls back to 其他. Generation failures are returned so the
// caller can surface them.
func (c *Categorizer) Categorize(ctx context.Context, description string) (string, error) {
	key := strings.TrimSpace(description)
	if key == "" {
		return domain.ExpenseCategoryOther, nil
	}

	if cached, ok := c.cache.Get(key); ok {
		return cached.(string), nil
	}

	reply, err := c.generator.Generate(ctx, fmt.Sprintf(categorizePrompt, key))
	if err != nil {
		return "", fmt.Errorf("service.Categorizer.Categorize: %w", err)
	}

	category := matchCategory(reply)
	c.cache.SetDefault(key, category)
	return category, nil
}

// matchCategory maps a model reply to a known category, tolerating extra
// punctuation or surrounding text.
func matchCategory(reply string) string {
	cleaned := replyPunctuation.ReplaceAllString(reply, "")
	for _, category := range domain.ExpenseCategories {
		if cleaned == category {
			return category
		}
	}
	for _, category := range domain.ExpenseCategories {
		if strings.Contains(cleaned, category) {
			return category
		}
	}
	return domain.ExpenseCategoryOther
}
