package preferences

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/finsight/internal/application"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
	domain "github.com/bryanwahyu/finsight/internal/domain/preferences"
	"github.com/bryanwahyu/finsight/internal/infra/db/memory"
)

func newService() *Service {
	return &Service{
		Repo:  memory.NewPreferencesRepository(),
		Clock: application.FixedClock{T: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func ptr(f float64) *float64 { return &f }

func TestSave_Defaults(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, "User preferences not found", errs.MessageOf(err))

	p, err := svc.Save(ctx, SaveCommand{UserID: "u1", Profession: "  Accountant "})
	require.NoError(t, err)
	assert.Equal(t, domain.ModelGemma, p.ModelType)
	assert.Equal(t, domain.StyleNormal, p.Style)
	assert.Equal(t, 0.3, p.Temperature)
	assert.Equal(t, "Accountant", p.Profession)

	p, err = svc.Save(ctx, SaveCommand{UserID: "u1", ModelType: "gemini-2.0-flash", Temperature: ptr(0), Profession: "CFO", Style: "Formal"})
	require.NoError(t, err)
	assert.Zero(t, p.Temperature)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ModelGemini, got.ModelType)
	assert.Equal(t, "CFO", got.Profession)
}

func TestSave_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cmd  SaveCommand
	}{
		{"unknown model", SaveCommand{ModelType: "gpt-9", Profession: "x"}},
		{"temperature too high", SaveCommand{Temperature: ptr(1.5), Profession: "x"}},
		{"negative temperature", SaveCommand{Temperature: ptr(-0.1), Profession: "x"}},
		{"blank profession", SaveCommand{Profession: "   "}},
		{"unknown style", SaveCommand{Profession: "x", Style: "Casual"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cmd.UserID = "u1"
			_, err := newService().Save(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.Equal(t, errs.KindInput, errs.KindOf(err))
		})
	}
}
