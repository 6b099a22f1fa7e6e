package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hodaren2022/aitravel-backend/internal/service"
)

// mockGenerator is a test double for service.TextGenerator.
type mockGenerator struct {
	generate func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return m.generate(ctx, prompt)
}

// compile-time check: mockGenerator must satisfy service.TextGenerator.
var _ service.TextGenerator = (*mockGenerator)(nil)

func TestCategorizer_ExactReply(t *testing.T) {
	c := service.NewCategorizer(&mockGenerator{
		generate: func(_ context.Context, _ string) (string, error) { return "交通", nil },
	}, slog.Default())

	got, err := c.Categorize(context.Background(), "高鐵車票")

	require.NoError(t, err)
	assert.Equal(t, "交通", got)
}

func TestCategorizer_CleansPunctuationAndFuzzyMatches(t *testing.T) {
	c := service.NewCategorizer(&mockGenerator{
		generate: func(_ context.Context, _ string) (string, error) { return "這筆費用屬於：住宿。", nil },
	}, slog.Default())

	got, err := c.Categorize(context.Background(), "京都民宿兩晚")

	require.NoError(t, err)
	assert.Equal(t, "住宿", got)
}

func TestCategorizer_UnrecognizedFallsBack(t *testing.T) {
	c := service.NewCategorizer(&mockGenerator{
		generate: func(_ context.Context, _ string) (string, error) { return "雜項", nil },
	}, slog.Default())

	got, err := c.Categorize(context.Background(), "不知道是什麼")

	require.NoError(t, err)
	assert.Equal(t, "其他", got)
}

func TestCategorizer_EmptyDescription(t *testing.T) {
	calls := 0
	c := service.NewCategorizer(&mockGenerator{
		generate: func(_ context.Context, _ string) (string, error) { calls++; return "餐飲", nil },
	}, slog.Default())

	got, err := c.Categorize(context.Background(), "   ")

	require.NoError(t, err)
	assert.Equal(t, "其他", got)
	assert.Zero(t, calls, "empty descriptions never reach the model")
}

func TestCategorizer_CachesPerDescription(t *testing.T) {
	calls := 0
	c := service.NewCategorizer(&mockGenerator{
		generate: func(_ context.Context, _ string) (string, error) { calls++; return "餐飲", nil },
	}, slog.Default())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.Categorize(ctx, "拉麵")
		require.NoError(t, err)
		assert.Equal(t, "餐飲", got)
	}

	assert.Equal(t, 1, calls, "repeated descriptions are served from cache")
}
