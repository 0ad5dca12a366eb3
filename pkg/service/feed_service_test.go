package service

import (
	"context"
	"testing"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewIDs(views []formatter.PostView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}

func TestFeedService_AnonymousSeesPublicOnly(t *testing.T) {
	e := setup(t)
	public, private := fakeAuthor("a1", false), fakeAuthor("a2", true)
	e.backend.addPost(fakePost("p1", public, 1))
	e.backend.addPost(fakePost("p2", private, 50))

	views, err := NewFeedService(e.session(t, "")).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"p1"}, viewIDs(views))
	assert.Equal(t, formatter.PostView{Post: views[0].Post}, views[0], "anonymous views carry no reactions")
}

func TestFeedService_ViewerGetsReactionsAndOverlay(t *testing.T) {
	e := setup(t)
	followed := fakeAuthor("a1", true)
	e.backend.addPost(fakePost("p1", followed, 3))
	e.backend.follows["u1"] = []string{"a1"}
	e.backend.addEdge("likes", "p1", "u1")

	s := e.session(t, "u1")
	require.NoError(t, s.Overlay.Record(context.Background(), "p1", api.Counters{Likes: api.Int(9)}))

	views, err := NewFeedService(s).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.True(t, views[0].Reactions.Liked)
	assert.Equal(t, 9, views[0].LikesCount, "overlay wins over fetched counters")
}

func TestFeedService_FailureIsReadError(t *testing.T) {
	e := setup(t)
	s := e.session(t, "u1")
	s.API = api.NewClient(brokenHTTP())

	_, err := NewFeedService(s).Load(context.Background())
	require.Error(t, err)
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeRead, cliErr.Type)
}

func TestFeedService_ShowPrintsCards(t *testing.T) {
	e := setup(t)
	e.backend.addPost(fakePost("p1", fakeAuthor("a1", false), 4))

	require.NoError(t, NewFeedService(e.session(t, "")).Show(context.Background()))
	assert.Contains(t, e.out.String(), "p1")
}

func TestFeedService_ShowJSON(t *testing.T) {
	e := setup(t)
	config.Set("output.format", "json")
	e.backend.addPost(fakePost("p1", fakeAuthor("a1", false), 4))

	require.NoError(t, NewFeedService(e.session(t, "")).Show(context.Background()))
	assert.Contains(t, e.out.String(), `"likes_count": 4`)
}

func TestFeedService_WatchWithZeroIntervalConfigured(t *testing.T) {
	e := setup(t)
	config.Set("feed.watch_interval_seconds", 0)
	e.backend.addPost(fakePost("p1", fakeAuthor("a1", false), 4))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NotPanics(t, func() {
		assert.NoError(t, NewFeedService(e.session(t, "")).Watch(ctx, 0))
	})
	assert.Contains(t, e.out.String(), "p1")
}
