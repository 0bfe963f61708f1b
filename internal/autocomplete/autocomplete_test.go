package autocomplete_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/apidex/internal/autocomplete"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) ListAPIs(ctx context.Context, p domain.QueryParams) (*domain.ResultPage, error) {
	args := m.Called(ctx, p)
	page, _ := args.Get(0).(*domain.ResultPage)
	return page, args.Error(1)
}

type staticHistory []string

func (h staticHistory) Matching(_ context.Context, prefix string) []string {
	var out []string
	for _, t := range h {
		if len(t) >= len(prefix) && t[:len(prefix)] == prefix {
			out = append(out, t)
		}
	}
	return out
}

func queryFor(q string) any {
	return mock.MatchedBy(func(p domain.QueryParams) bool {
		return p.Q == q && p.Size == 5 && p.Page == 0
	})
}

func TestSuggester_TypeDebounces(t *testing.T) {
	t.Parallel()

	m := &mockSearcher{}
	m.On("ListAPIs", mock.Anything, queryFor("wea")).Return(&domain.ResultPage{
		Content: []domain.API{{APIID: 1, Name: "Weather One"}, {APIID: 2, Name: "WeatherKit"}},
	}, nil).Once()

	s := autocomplete.New(m, staticHistory{"weather", "maps"}, autocomplete.WithDelay(20*time.Millisecond))
	ctx := context.Background()
	s.Type(ctx, "w")
	s.Type(ctx, "we")
	s.Type(ctx, "wea")

	select {
	case got := <-s.Results():
		assert.Equal(t, "wea", got.Input)
		assert.Equal(t, []string{"weather"}, got.Recent)
		assert.Equal(t, []string{"Weather One", "WeatherKit"}, got.APIs)
		assert.NoError(t, got.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no suggestions delivered")
	}

	m.AssertExpectations(t)
	m.AssertNumberOfCalls(t, "ListAPIs", 1)
}

func TestSuggester_BlankInputSkipsNetwork(t *testing.T) {
	t.Parallel()

	m := &mockSearcher{}
	s := autocomplete.New(m, staticHistory{"a", "b"})

	got := s.Suggest(context.Background(), "   ")
	assert.Empty(t, got.Input)
	assert.Equal(t, []string{"a", "b"}, got.Recent)
	assert.Empty(t, got.APIs)
	m.AssertNotCalled(t, "ListAPIs", mock.Anything, mock.Anything)
}

func TestSuggester_LookupError(t *testing.T) {
	t.Parallel()

	m := &mockSearcher{}
	m.On("ListAPIs", mock.Anything, queryFor("x")).Return(nil, errors.New("offline"))

	got := autocomplete.New(m, nil).Suggest(context.Background(), "x")
	require.Error(t, got.Err)
	assert.Contains(t, got.Err.Error(), "offline")
	assert.Empty(t, got.Recent)
}

func TestSuggester_StopDropsPending(t *testing.T) {
	t.Parallel()

	m := &mockSearcher{}
	s := autocomplete.New(m, nil, autocomplete.WithDelay(10*time.Millisecond))
	s.Type(context.Background(), "abc")
	s.Stop()

	time.Sleep(40 * time.Millisecond)
	select {
	case got := <-s.Results():
		t.Fatalf("unexpected suggestions %+v", got)
	default:
	}
	m.AssertNotCalled(t, "ListAPIs", mock.Anything, mock.Anything)
}

func TestSuggester_Flush(t *testing.T) {
	t.Parallel()

	m := &mockSearcher{}
	m.On("ListAPIs", mock.Anything, queryFor("pay")).Return(&domain.ResultPage{
		Content: []domain.API{{APIID: 9, Name: "PayFast"}},
	}, nil)

	s := autocomplete.New(m, nil, autocomplete.WithDelay(time.Hour))
	s.Type(context.Background(), "pay")
	require.True(t, s.Flush())

	got := <-s.Results()
	assert.Equal(t, []string{"PayFast"}, got.APIs)
}
