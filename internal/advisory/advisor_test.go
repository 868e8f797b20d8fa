package advisory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAdvisor struct {
	mock.Mock
}

func (m *MockAdvisor) Name() string { return "mock" }

func (m *MockAdvisor) Comment(ctx context.Context, s Summary) ([]string, error) {
	args := m.Called(ctx, s)
	lines, _ := args.Get(0).([]string)
	return lines, args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	if lines, ok := args.Get(0).([]string); ok {
		*(dest.(*[]string)) = lines
	}
	return args.Error(1)
}

var _ cache.CacheService = (*MockCache)(nil)

var testSummary = Summary{Total: 7, MaxTotal: 11, MMSE: 5, Clock: 1, Memory: 1, Moves: 22}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNoopAdvisor(t *testing.T) {
	lines, err := NoopAdvisor{}.Comment(context.Background(), testSummary)
	assert.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, "none", NoopAdvisor{}.Name())
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(testSummary)
	assert.Contains(t, p, "Итог: 7 из 11")
	assert.Contains(t, p, "Этап 1 (MMSE/MoCA): 5/7")
	assert.Contains(t, p, "Этап 2 (Часы): 1/1")
	assert.Contains(t, p, "Этап 3 (Memory): 1/3, ходов: 22")
	assert.Contains(t, p, "очную консультацию врача")
}

func TestPlainLines(t *testing.T) {
	in := "## Итог\n\n* **Память** снижена\n\n\n> совет: `гулять`\n   \n_сон_ 8 ч"
	assert.Equal(t, []string{"Итог", "Память снижена", "совет: гулять", "сон 8 ч"}, PlainLines(in))

	assert.Empty(t, PlainLines(""))
	assert.Empty(t, PlainLines("***\n\n##"))

	long := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10"
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8"}, PlainLines(long))
}

func TestCachedAdvisor_Hit(t *testing.T) {
	next := new(MockAdvisor)
	c := new(MockCache)
	c.On("Get", mock.Anything, cacheKey("mock", testSummary), mock.Anything).
		Return([]string{"из кэша"}, nil)

	a := NewCachedAdvisor(next, c, time.Hour, discardLogger())
	lines, err := a.Comment(context.Background(), testSummary)

	require.NoError(t, err)
	assert.Equal(t, []string{"из кэша"}, lines)
	next.AssertNotCalled(t, "Comment", mock.Anything, mock.Anything)
}

func TestCachedAdvisor_MissStores(t *testing.T) {
	next := new(MockAdvisor)
	next.On("Comment", mock.Anything, testSummary).Return([]string{"совет"}, nil)
	c := new(MockCache)
	key := cacheKey("mock", testSummary)
	c.On("Get", mock.Anything, key, mock.Anything).Return(nil, cache.ErrCacheMiss)
	c.On("Set", mock.Anything, key, []string{"совет"}, time.Hour).Return(nil)

	a := NewCachedAdvisor(next, c, time.Hour, discardLogger())
	lines, err := a.Comment(context.Background(), testSummary)

	require.NoError(t, err)
	assert.Equal(t, []string{"совет"}, lines)
	c.AssertExpectations(t)
	next.AssertExpectations(t)
}

func TestCachedAdvisor_ErrorsPassThroughUncached(t *testing.T) {
	boom := errors.New("quota exceeded")
	next := new(MockAdvisor)
	next.On("Comment", mock.Anything, testSummary).Return(nil, boom)
	c := new(MockCache)
	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))

	a := NewCachedAdvisor(next, c, time.Hour, discardLogger())
	_, err := a.Comment(context.Background(), testSummary)

	assert.ErrorIs(t, err, boom)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
