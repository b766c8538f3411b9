// Package memory holds process-local repositories used when
// database.driver is "memory" and in tests. Every read returns a copy.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bryanwahyu/finsight/internal/domain/comparisons"
	"github.com/bryanwahyu/finsight/internal/domain/failures"
	"github.com/bryanwahyu/finsight/internal/domain/preferences"
	"github.com/bryanwahyu/finsight/internal/domain/projects"
	"github.com/bryanwahyu/finsight/internal/domain/users"
)

type UserRepository struct {
	mu   sync.RWMutex
	byID map[string]users.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[string]users.User{}}
}

func (r *UserRepository) Create(_ context.Context, u *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return users.ErrAlreadyExists
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

type ProjectRepository struct {
	mu   sync.RWMutex
	byID map[projects.ProjectID]projects.Project
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{byID: map[projects.ProjectID]projects.Project{}}
}

func cloneProject(p projects.Project) *projects.Project {
	p.Insights = append([]string(nil), p.Insights...)
	p.ImprovementSuggestions = append([]string(nil), p.ImprovementSuggestions...)
	p.ChartData = append([]byte(nil), p.ChartData...)
	p.FuturePredictions = append([]byte(nil), p.FuturePredictions...)
	return &p
}

func (r *ProjectRepository) Save(_ context.Context, p *projects.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now().UTC()
	}
	if !p.Status.Valid() {
		p.Status = projects.StatusPending
	}
	r.byID[p.ID] = *cloneProject(*p)
	return nil
}

func (r *ProjectRepository) Get(_ context.Context, userID string, id projects.ProjectID) (*projects.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok || p.UserID != userID {
		return nil, projects.ErrNotFound
	}
	return cloneProject(p), nil
}

func (r *ProjectRepository) List(_ context.Context, userID string) ([]*projects.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*projects.Project
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *ProjectRepository) FindMany(_ context.Context, userID string, ids []projects.ProjectID) ([]*projects.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[projects.ProjectID]bool{}
	var out []*projects.Project
	for _, id := range ids {
		if p, ok := r.byID[id]; ok && p.UserID == userID && !seen[id] {
			seen[id] = true
			out = append(out, cloneProject(p))
		}
	}
	return out, nil
}

func (r *ProjectRepository) Delete(_ context.Context, userID string, id projects.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok || p.UserID != userID {
		return projects.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type PreferencesRepository struct {
	mu     sync.RWMutex
	byUser map[string]preferences.Preferences
}

func NewPreferencesRepository() *PreferencesRepository {
	return &PreferencesRepository{byUser: map[string]preferences.Preferences{}}
}

func (r *PreferencesRepository) Get(_ context.Context, userID string) (*preferences.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byUser[userID]
	if !ok {
		return nil, preferences.ErrNotFound
	}
	return &p, nil
}

func (r *PreferencesRepository) Upsert(_ context.Context, p *preferences.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	if old, ok := r.byUser[p.UserID]; ok {
		p.CreatedAt = old.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	r.byUser[p.UserID] = *p
	return nil
}

type ComparisonRepository struct {
	mu   sync.RWMutex
	byID map[comparisons.ID]comparisons.ComparativeAnalysis
}

func NewComparisonRepository() *ComparisonRepository {
	return &ComparisonRepository{byID: map[comparisons.ID]comparisons.ComparativeAnalysis{}}
}

// Save validates through Prepare before storing.
func (r *ComparisonRepository) Save(_ context.Context, c *comparisons.ComparativeAnalysis) error {
	if err := c.Prepare(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	cp := *c
	cp.UploadedFiles = append([]string(nil), c.UploadedFiles...)
	r.byID[c.ID] = cp
	return nil
}

func (r *ComparisonRepository) Get(_ context.Context, owner string, id comparisons.ID) (*comparisons.ComparativeAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok || c.CreatedBy != owner {
		return nil, comparisons.ErrNotFound
	}
	return &c, nil
}

func (r *ComparisonRepository) Paginate(_ context.Context, owner string, page, pageSize int) ([]*comparisons.ComparativeAnalysis, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	r.mu.RLock()
	var all []*comparisons.ComparativeAnalysis
	for _, c := range r.byID {
		if c.CreatedBy == owner {
			all = append(all, &c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []*comparisons.ComparativeAnalysis{}, int64(len(all)), nil
	}
	end := min(start+pageSize, len(all))
	return all[start:end], int64(len(all)), nil
}

type FailureRepository struct {
	mu   sync.Mutex
	next int64
	rows []failures.Failure
}

func NewFailureRepository() *FailureRepository { return &FailureRepository{} }

func (r *FailureRepository) Save(_ context.Context, f *failures.Failure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	f.ID = r.next
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	f.RawResponse = failures.Truncate(f.RawResponse)
	r.rows = append(r.rows, *f)
	return nil
}

func (r *FailureRepository) ListByProject(_ context.Context, userID string, projectID string, limit int) ([]*failures.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*failures.Failure
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		f := r.rows[i]
		if f.UserID != userID {
			continue
		}
		for _, id := range f.ProjectIDs {
			if id == projectID {
				out = append(out, &f)
				break
			}
		}
	}
	return out, nil
}
