package service

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/formatter"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/interaction"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
)

// PostActionsService reacts to posts on behalf of the signed-in viewer.
type PostActionsService struct {
	session *Session
	posts   *PostService
}

// NewPostActionsService creates a new post actions service
func NewPostActionsService(session *Session) *PostActionsService {
	return &PostActionsService{session: session, posts: NewPostService(session)}
}

// staleFlag remembers that a write settled and the post should be re-read.
type staleFlag struct{ stale atomic.Bool }

func (f *staleFlag) Trigger() { f.stale.Store(true) }

// Do applies action to postID and returns the post as it stands afterwards.
// Failures are shown as a notice and reported as ErrSilent.
func (s *PostActionsService) Do(ctx context.Context, postID string, action interaction.Action) (formatter.PostView, error) {
	if err := s.session.RequireViewer(); err != nil {
		return formatter.PostView{}, err
	}

	v, err := s.posts.Get(ctx, postID)
	if err != nil {
		return formatter.PostView{}, err
	}

	stale := &staleFlag{}
	ctrl := interaction.New(v.Post, s.session.ViewerID(), v.Reactions, interaction.Deps{
		Backend:     s.session.API,
		Bus:         s.session.Bus,
		Overlay:     s.session.Overlay,
		Notifier:    interaction.NotifierFunc(output.PrintNotice),
		Revalidator: stale,
	})
	defer ctrl.Close()

	err = ctrl.Do(ctx, action)
	switch {
	case errors.Is(err, interaction.ErrNoop):
		output.PrintInfo("Nothing to do: post %s is already in that state", postID)
	case errors.Is(err, interaction.ErrSuperseded):
		output.PrintInfo("Post %s was reacted to again before this finished", postID)
	case errors.Is(err, interaction.ErrInFlight):
		return formatter.PostView{}, clierrors.ConflictError(err)
	case err != nil:
		return formatter.PostView{Post: ctrl.Post(), Reactions: ctrl.State()}, ErrSilent
	}

	after := formatter.PostView{Post: ctrl.Post(), Reactions: ctrl.State()}
	if stale.stale.Load() {
		if fresh, err := s.posts.Get(ctx, postID); err != nil {
			logger.Warn("Failed to re-read post", "post_id", postID, "error", err)
		} else {
			after.Post = fresh.Post
		}
	}
	return after, nil
}

// Run applies action to postID and prints the result.
func (s *PostActionsService) Run(ctx context.Context, postID string, action interaction.Action) error {
	v, err := s.Do(ctx, postID, action)
	if err != nil {
		return err
	}
	if output.GetOutputFormat() == output.FormatText {
		output.PrintSuccess("%s: %s", pastTense(action), postID)
	}
	return formatter.PrintPosts([]formatter.PostView{v})
}

func pastTense(a interaction.Action) string {
	switch a {
	case interaction.Like:
		return "Liked"
	case interaction.Unlike:
		return "Removed like"
	case interaction.Dislike:
		return "Disliked"
	case interaction.Undislike:
		return "Removed dislike"
	case interaction.Repost:
		return "Reposted"
	case interaction.Unrepost:
		return "Removed repost"
	}
	return a.String()
}

var _ interaction.Backend = (*api.Client)(nil)
