package services

import (
	"context"
	"sync"
	"time"

	"github.com/boredgamer/platform/models"
	"github.com/boredgamer/platform/repositories"
)

// In-memory repository fakes. They honor the same sentinel errors and the
// revision check of the real Postgres implementations.

type fakeTournamentRepo struct {
	tournaments map[string]*models.Tournament

	// beforeUpdate is invoked once before the next UpdateBrackets call,
	// which lets a test interleave a concurrent writer.
	beforeUpdate func()
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[string]*models.Tournament)}
}

func (r *fakeTournamentRepo) put(t *models.Tournament) {
	r.tournaments[t.ID] = t
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.CreatedAt = time.Now().UTC()
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	copied.Brackets = make([]models.Match, len(t.Brackets))
	copy(copied.Brackets, t.Brackets)
	return &copied, nil
}

func (r *fakeTournamentRepo) ListByStudio(ctx context.Context, studioID string) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if t.StudioID == studioID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) CountByStudio(ctx context.Context, studioID string) (int, error) {
	count := 0
	for _, t := range r.tournaments {
		if t.StudioID == studioID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTournamentRepo) UpdateBrackets(ctx context.Context, id string, brackets []models.Match, expectedRevision int) error {
	if r.beforeUpdate != nil {
		hook := r.beforeUpdate
		r.beforeUpdate = nil
		hook()
	}
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.Revision != expectedRevision {
		return repositories.ErrBracketsRevisionConflict
	}
	t.Brackets = make([]models.Match, len(brackets))
	copy(t.Brackets, brackets)
	t.Revision++
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeStudioRepo struct {
	studios map[string]*models.Studio
	order   []string
}

func newFakeStudioRepo() *fakeStudioRepo {
	return &fakeStudioRepo{studios: make(map[string]*models.Studio)}
}

func (r *fakeStudioRepo) put(s *models.Studio) {
	if _, ok := r.studios[s.ID]; !ok {
		r.order = append(r.order, s.ID)
	}
	r.studios[s.ID] = s
}

func (r *fakeStudioRepo) Create(ctx context.Context, s *models.Studio) error {
	for _, existing := range r.studios {
		if existing.Name == s.Name {
			return repositories.ErrStudioNameConflict
		}
	}
	s.CreatedAt = time.Now().UTC()
	r.put(s)
	return nil
}

func (r *fakeStudioRepo) GetByID(ctx context.Context, id string) (*models.Studio, error) {
	s, ok := r.studios[id]
	if !ok {
		return nil, repositories.ErrStudioNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStudioRepo) List(ctx context.Context) ([]models.Studio, error) {
	out := make([]models.Studio, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.studios[id])
	}
	return out, nil
}

func (r *fakeStudioRepo) UpdateTier(ctx context.Context, id string, tier models.Tier) error {
	s, ok := r.studios[id]
	if !ok {
		return repositories.ErrStudioNotFound
	}
	s.Tier = tier
	return nil
}

type fakeEventRepo struct {
	// The sweeper touches this fake from several goroutines.
	mu     sync.Mutex
	events []models.Event

	// listErrFor forces a per-studio query error, for failure-isolation
	// tests.
	listErrFor map[string]error

	deleteCalls int
	batchSizes  []int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{listErrFor: make(map[string]error)}
}

func (r *fakeEventRepo) Insert(ctx context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.CreatedAt = time.Now().UTC()
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeEventRepo) ListExpired(ctx context.Context, studioID string, cutoff time.Time, limit int) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.listErrFor[studioID]; err != nil {
		return nil, err
	}
	out := make([]models.Event, 0)
	for _, e := range r.events {
		if e.StudioID == studioID && e.Timestamp.Before(cutoff) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeEventRepo) DeleteBatch(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	r.batchSizes = append(r.batchSizes, len(ids))

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := r.events[:0]
	for _, e := range r.events {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	r.events = kept
	return nil
}

func (r *fakeEventRepo) CountByStudio(ctx context.Context, studioID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.events {
		if e.StudioID == studioID {
			count++
		}
	}
	return count, nil
}

type fakeLeaderboardRepo struct {
	leaderboards map[string]*models.Leaderboard
	scores       map[string]map[string]*models.LeaderboardScore
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{
		leaderboards: make(map[string]*models.Leaderboard),
		scores:       make(map[string]map[string]*models.LeaderboardScore),
	}
}

func (r *fakeLeaderboardRepo) Create(ctx context.Context, l *models.Leaderboard) error {
	for _, existing := range r.leaderboards {
		if existing.StudioID == l.StudioID && existing.Name == l.Name {
			return repositories.ErrLeaderboardNameConflict
		}
	}
	l.CreatedAt = time.Now().UTC()
	r.leaderboards[l.ID] = l
	return nil
}

func (r *fakeLeaderboardRepo) GetByID(ctx context.Context, id string) (*models.Leaderboard, error) {
	l, ok := r.leaderboards[id]
	if !ok {
		return nil, repositories.ErrLeaderboardNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLeaderboardRepo) CountByStudio(ctx context.Context, studioID string) (int, error) {
	count := 0
	for _, l := range r.leaderboards {
		if l.StudioID == studioID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLeaderboardRepo) UpsertScore(ctx context.Context, s *models.LeaderboardScore) error {
	if _, ok := r.leaderboards[s.LeaderboardID]; !ok {
		return repositories.ErrLeaderboardNotFound
	}
	byPlayer, ok := r.scores[s.LeaderboardID]
	if !ok {
		byPlayer = make(map[string]*models.LeaderboardScore)
		r.scores[s.LeaderboardID] = byPlayer
	}
	if existing, ok := byPlayer[s.PlayerID]; ok && existing.Score > s.Score {
		s.Score = existing.Score
	}
	s.UpdatedAt = time.Now().UTC()
	byPlayer[s.PlayerID] = s
	return nil
}

func (r *fakeLeaderboardRepo) TopScores(ctx context.Context, leaderboardID string, limit int) ([]models.LeaderboardScore, error) {
	out := make([]models.LeaderboardScore, 0)
	for _, s := range r.scores[leaderboardID] {
		out = append(out, *s)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Score > out[i].Score {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeArchiver records archived batches and can be made to fail.
type fakeArchiver struct {
	calls      int
	batchSizes []int
	err        error
}

func (a *fakeArchiver) ArchiveEvents(ctx context.Context, studioID string, events []models.Event) error {
	if a.err != nil {
		return a.err
	}
	a.calls++
	a.batchSizes = append(a.batchSizes, len(events))
	return nil
}

type noopBroadcaster struct {
	calls int
}

func (b *noopBroadcaster) BroadcastBracketUpdate(tournamentID string, brackets []models.Match) {
	b.calls++
}
