package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/finsight/internal/domain/analysis"
	"github.com/bryanwahyu/finsight/internal/domain/comparisons"
	"github.com/bryanwahyu/finsight/internal/domain/failures"
	"github.com/bryanwahyu/finsight/internal/domain/projects"
	"github.com/bryanwahyu/finsight/internal/domain/users"
)

func TestProjectRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectRepository()
	require.NoError(t, repo.Save(ctx, &projects.Project{ID: "p1", UserID: "u1", Status: projects.StatusUploaded}))

	_, err := repo.Get(ctx, "u2", "p1")
	assert.ErrorIs(t, err, projects.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "u2", "p1"), projects.ErrNotFound)

	got, err := repo.FindMany(ctx, "u1", []projects.ProjectID{"p1", "p1", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got[0].Summary = "mutated"
	again, err := repo.Get(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Empty(t, again.Summary)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	require.NoError(t, repo.Create(ctx, &users.User{ID: "1", Email: "a@b.c"}))
	assert.ErrorIs(t, repo.Create(ctx, &users.User{ID: "2", Email: "A@B.C"}), users.ErrAlreadyExists)
}

func TestComparisonRepository_PaginateNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewComparisonRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []comparisons.ID{"a", "b", "c"} {
		c := comparisons.New(id, "u1", []string{"x", "y"}, &analysis.CompareResult{
			Analysis: analysis.Analysis{KeyMetrics: "k", Trends: "t", Recommendations: "r", PerformanceRanking: []string{"X"}},
		}, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Save(ctx, c))
	}

	page, total, err := repo.Paginate(ctx, "u1", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, comparisons.ID("c"), page[0].ID)
	assert.Equal(t, "X", page[0].BestPerformingCompany)

	page, _, err = repo.Paginate(ctx, "u1", 3, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestFailureRepository_ListByProject(t *testing.T) {
	ctx := context.Background()
	repo := NewFailureRepository()
	require.NoError(t, repo.Save(ctx, &failures.Failure{UserID: "u1", ProjectIDs: []string{"p1"}, Message: "one"}))
	require.NoError(t, repo.Save(ctx, &failures.Failure{UserID: "u1", ProjectIDs: []string{"p1", "p2"}, Message: "two"}))
	require.NoError(t, repo.Save(ctx, &failures.Failure{UserID: "u2", ProjectIDs: []string{"p1"}, Message: "other"}))

	got, err := repo.ListByProject(ctx, "u1", "p1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Message)
}
