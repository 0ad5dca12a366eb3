package feed

import (
	"testing"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/stretchr/testify/assert"
)

func TestEngagement(t *testing.T) {
	p := api.Post{LikesCount: 10, CommentsCount: 2, RepostsCount: 3, BrokenHeartsCount: 40, ViewsCount: 1000}
	assert.Equal(t, float64(2*10+3*2+2*3), Engagement(p))
}

func TestScore(t *testing.T) {
	created := time.UnixMilli(1_760_000_000_000)
	p := api.Post{LikesCount: 1, CreatedAt: created}

	want := 2*0.7 + (1_760_000_000_000/1e6)*0.3
	assert.InDelta(t, want, Score(p), 1e-9)
}

func TestRank_StableForEqualScores(t *testing.T) {
	ts := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	posts := []api.Post{
		{ID: "a", CreatedAt: ts},
		{ID: "b", CreatedAt: ts, LikesCount: 5},
		{ID: "c", CreatedAt: ts},
		{ID: "d", CreatedAt: ts},
	}
	Rank(posts)
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids(posts))
}

func TestRank_RecencyBreaksEngagementTies(t *testing.T) {
	old := api.Post{ID: "old", CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), LikesCount: 3}
	fresh := api.Post{ID: "fresh", CreatedAt: old.CreatedAt.Add(48 * time.Hour), LikesCount: 3}

	posts := []api.Post{old, fresh}
	Rank(posts)
	assert.Equal(t, []string{"fresh", "old"}, ids(posts))
}
