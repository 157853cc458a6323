package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/boredgamer/platform/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLeaderboardFixture(tier models.Tier) (LeaderboardService, *fakeLeaderboardRepo, *fakeStudioRepo) {
	studioRepo := newFakeStudioRepo()
	studioRepo.put(&models.Studio{ID: "s1", Name: "Acme Games", Tier: tier})
	leaderboardRepo := newFakeLeaderboardRepo()
	return NewLeaderboardService(leaderboardRepo, studioRepo), leaderboardRepo, studioRepo
}

func TestCreateLeaderboard(t *testing.T) {
	svc, _, _ := newLeaderboardFixture(models.TierProfessional)

	leaderboard, err := svc.Create(context.Background(), "s1", CreateLeaderboardInput{Name: "Weekly"})
	require.NoError(t, err)
	assert.NotEmpty(t, leaderboard.ID)
	assert.Equal(t, "s1", leaderboard.StudioID)
	assert.Equal(t, "Weekly", leaderboard.Name)
}

func TestCreateLeaderboardTierLimit(t *testing.T) {
	svc, _, _ := newLeaderboardFixture(models.TierIndependent)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "s1", CreateLeaderboardInput{Name: fmt.Sprintf("Board %d", i)})
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, "s1", CreateLeaderboardInput{Name: "One Too Many"})
	assert.ErrorIs(t, err, ErrTierLimitReached)
}

func TestCreateLeaderboardValidation(t *testing.T) {
	svc, _, _ := newLeaderboardFixture(models.TierProfessional)

	_, err := svc.Create(context.Background(), "s1", CreateLeaderboardInput{Name: "  "})
	assert.ErrorIs(t, err, ErrLeaderboardNameRequired)

	_, err = svc.Create(context.Background(), "missing", CreateLeaderboardInput{Name: "Weekly"})
	assert.ErrorIs(t, err, ErrStudioNotFound)
}

func TestSubmitScoreKeepsHighest(t *testing.T) {
	svc, _, _ := newLeaderboardFixture(models.TierProfessional)
	ctx := context.Background()

	leaderboard, err := svc.Create(ctx, "s1", CreateLeaderboardInput{Name: "Weekly"})
	require.NoError(t, err)

	_, err = svc.SubmitScore(ctx, "s1", leaderboard.ID, SubmitScoreInput{PlayerID: "p1", Score: 100})
	require.NoError(t, err)
	_, err = svc.SubmitScore(ctx, "s1", leaderboard.ID, SubmitScoreInput{PlayerID: "p1", Score: 40})
	require.NoError(t, err)

	scores, err := svc.Top(ctx, leaderboard.ID, 10)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, int64(100), scores[0].Score)
}

func TestSubmitScoreIsStudioScoped(t *testing.T) {
	svc, _, studioRepo := newLeaderboardFixture(models.TierProfessional)
	studioRepo.put(&models.Studio{ID: "s2", Name: "Rival Games", Tier: models.TierProfessional})
	ctx := context.Background()

	leaderboard, err := svc.Create(ctx, "s1", CreateLeaderboardInput{Name: "Weekly"})
	require.NoError(t, err)

	// A key for another studio must not reveal the leaderboard exists.
	_, err = svc.SubmitScore(ctx, "s2", leaderboard.ID, SubmitScoreInput{PlayerID: "p1", Score: 9})
	assert.ErrorIs(t, err, ErrLeaderboardNotFound)
}

func TestTopOrdersAndLimits(t *testing.T) {
	svc, _, _ := newLeaderboardFixture(models.TierProfessional)
	ctx := context.Background()

	leaderboard, err := svc.Create(ctx, "s1", CreateLeaderboardInput{Name: "Weekly"})
	require.NoError(t, err)

	for i, score := range []int64{30, 90, 60} {
		_, err = svc.SubmitScore(ctx, "s1", leaderboard.ID, SubmitScoreInput{
			PlayerID: fmt.Sprintf("p%d", i),
			Score:    score,
		})
		require.NoError(t, err)
	}

	scores, err := svc.Top(ctx, leaderboard.ID, 2)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, int64(90), scores[0].Score)
	assert.Equal(t, int64(60), scores[1].Score)
}

func TestTopUnknownLeaderboard(t *testing.T) {
	svc, _, _ := newLeaderboardFixture(models.TierProfessional)

	_, err := svc.Top(context.Background(), "missing", 10)
	assert.ErrorIs(t, err, ErrLeaderboardNotFound)
}
