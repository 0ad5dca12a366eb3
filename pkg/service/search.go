package service

import (
	"context"
	"strings"

	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/formatter"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
)

const DefaultSearchLimit = 20

// SearchService finds posts by content.
type SearchService struct {
	session *Session
}

// NewSearchService creates a new search service
func NewSearchService(session *Session) *SearchService {
	return &SearchService{session: session}
}

// Search returns the newest posts containing query. Posts by private authors
// are kept only when the viewer is the author or follows them.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]formatter.PostView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, clierrors.ValidationError("query", "cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	posts, err := s.session.API.SearchPosts(ctx, query, limit)
	if err != nil {
		return nil, clierrors.ReadError("Could not search posts", err)
	}
	visible, err := s.session.visibleAuthors(ctx)
	if err != nil {
		return nil, clierrors.ReadError("Could not search posts", err)
	}

	kept := posts[:0]
	for _, p := range posts {
		if p.IsPrivateAuthor() && !visible[p.AuthorID] {
			continue
		}
		kept = append(kept, p)
	}
	logger.Debug("Search finished", "query", query, "found", len(posts), "visible", len(kept))

	return s.session.views(ctx, s.session.Overlay.MergeInto(kept)), nil
}

// Show prints the results of Search.
func (s *SearchService) Show(ctx context.Context, query string, limit int) error {
	views, err := s.Search(ctx, query, limit)
	if err != nil {
		return err
	}
	return formatter.PrintPosts(views)
}
