package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/finsight/internal/domain/ai"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
	"github.com/bryanwahyu/finsight/internal/domain/preferences"
)

type completerMock struct{ mock.Mock }

func (m *completerMock) Complete(ctx context.Context, req domain.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestDispatch_RoutesByModel(t *testing.T) {
	gemini, groq := &completerMock{}, &completerMock{}
	groq.On("Complete", mock.Anything, domain.Request{Prompt: "p", Temperature: 0.7, MaxTokens: 4096, JSON: true}).
		Return(`{"ok":true}`, nil).Once()

	svc := NewService(map[preferences.ModelType]domain.Completer{
		preferences.ModelGemini: gemini,
		preferences.ModelGemma:  groq,
	}, 0)

	out, err := svc.Dispatch(context.Background(), &preferences.Preferences{ModelType: preferences.ModelGemma, Temperature: 0.7}, "p")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	groq.AssertExpectations(t)
	gemini.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestDispatch_UnsupportedModelMakesNoCall(t *testing.T) {
	c := &completerMock{}
	svc := NewService(map[preferences.ModelType]domain.Completer{preferences.ModelGemma: c}, 100)

	_, err := svc.Dispatch(context.Background(), &preferences.Preferences{ModelType: "invalid"}, "p")
	require.Error(t, err)
	assert.Equal(t, errs.KindUnsupportedModel, errs.KindOf(err))
	assert.Equal(t, "Invalid model type in preferences", errs.MessageOf(err))
	c.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestDispatch_ProviderError(t *testing.T) {
	c := &completerMock{}
	c.On("Complete", mock.Anything, mock.Anything).Return("", domain.ErrQuotaExceeded).Once()
	svc := NewService(map[preferences.ModelType]domain.Completer{preferences.ModelGemini: c}, 100)

	_, err := svc.Dispatch(context.Background(), &preferences.Preferences{ModelType: preferences.ModelGemini}, "p")
	require.Error(t, err)
	assert.Equal(t, errs.KindProvider, errs.KindOf(err))
	assert.Equal(t, "Failed to generate content", errs.MessageOf(err))
	assert.True(t, errors.Is(err, domain.ErrQuotaExceeded))
	c.AssertNumberOfCalls(t, "Complete", 1)
}
