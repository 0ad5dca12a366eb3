package service

import (
	"context"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/formatter"
)

// PostService shows single posts.
type PostService struct {
	session *Session
}

// NewPostService creates a new post service
func NewPostService(session *Session) *PostService {
	return &PostService{session: session}
}

// Get fetches postID with the overlay merged in and the viewer's reactions.
func (s *PostService) Get(ctx context.Context, postID string) (formatter.PostView, error) {
	if postID == "" {
		return formatter.PostView{}, clierrors.ValidationError("post id", "cannot be empty")
	}

	p, err := s.session.API.GetPost(ctx, postID)
	if err != nil {
		if api.IsNotFound(err) {
			return formatter.PostView{}, clierrors.NotFoundError("Post", postID)
		}
		return formatter.PostView{}, clierrors.ReadError("Could not load post", err)
	}

	merged := s.session.Overlay.MergeInto([]api.Post{*p})
	return s.session.views(ctx, merged)[0], nil
}

// Show prints postID.
func (s *PostService) Show(ctx context.Context, postID string) error {
	v, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	return formatter.PrintPosts([]formatter.PostView{v})
}
