package feed

import (
	"sort"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
)

// Ranking weights. The score is a fixed heuristic, not a learned model.
const (
	likeWeight    = 2
	commentWeight = 3
	repostWeight  = 2

	engagementShare = 0.7
	recencyShare    = 0.3
)

// Engagement is 2·likes + 3·comments + 2·reposts.
func Engagement(p api.Post) float64 {
	return float64(likeWeight*p.LikesCount + commentWeight*p.CommentsCount + repostWeight*p.RepostsCount)
}

// Score combines engagement with recency. The timestamp term is the creation
// time in unix milliseconds scaled down by 1e6, so it grows by roughly 86
// per day and dominates between posts with similar engagement.
func Score(p api.Post) float64 {
	recency := float64(p.CreatedAt.UnixMilli()) / 1e6
	return Engagement(p)*engagementShare + recency*recencyShare
}

// Rank sorts posts by Score, highest first. Posts with equal scores keep
// their relative order.
func Rank(posts []api.Post) {
	scores := make(map[string]float64, len(posts))
	for _, p := range posts {
		scores[p.ID] = Score(p)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return scores[posts[i].ID] > scores[posts[j].ID]
	})
}
