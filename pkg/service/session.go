package service

import (
	"context"
	"errors"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/auth"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/bus"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/client"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/credentials"
	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/formatter"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/interaction"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/overlay"
)

// ErrSilent is returned once a failure has already been shown to the user.
var ErrSilent = errors.New("silent error")

// Session is everything one command invocation shares: the backend client,
// the signed-in viewer (nil when anonymous), the counter overlay and the bus
// that keeps views of the same post in step.
type Session struct {
	API     *api.Client
	Creds   *credentials.Credentials
	Overlay *overlay.Overlay
	Bus     *bus.Bus

	closeStore func() error
}

// OpenSession loads stored credentials and the overlay for the current
// session. Expired credentials are renewed with their refresh token when
// possible and fall back to the anonymous view otherwise.
func OpenSession(ctx context.Context) (*Session, error) {
	creds, err := credentials.Load()
	if err != nil {
		return nil, clierrors.ReadError("Could not read credentials", err)
	}

	apiClient := api.NewClient(client.GetClient())
	if creds != nil && !creds.IsValid() {
		renewed, err := auth.NewSessionRecovery(apiClient).RecoverSession(ctx, creds)
		if err != nil {
			logger.Warn("Stored session expired", "user", creds.Username, "error", err)
			output.PrintWarning("Session expired, continuing anonymously. Run 'blaze auth login' to sign in again.")
		}
		creds = renewed
	}

	sessionID := ""
	if creds != nil {
		client.SetAuthToken(creds.AccessToken)
		sessionID = creds.SessionID
	}

	store, closeStore, err := overlay.OpenStore(ctx, sessionID)
	if err != nil {
		return nil, clierrors.ReadError("Could not open counter overlay", err)
	}
	ov, err := overlay.New(ctx, store)
	if err != nil {
		closeStore()
		return nil, clierrors.ReadError("Could not load counter overlay", err)
	}

	s := NewSession(apiClient, creds, ov)
	s.closeStore = closeStore
	return s, nil
}

// NewSession assembles a session from parts.
func NewSession(apiClient *api.Client, creds *credentials.Credentials, ov *overlay.Overlay) *Session {
	return &Session{
		API:     apiClient,
		Creds:   creds,
		Overlay: ov,
		Bus:     bus.New(),
	}
}

// ViewerID is empty for anonymous sessions.
func (s *Session) ViewerID() string {
	if s.Creds == nil {
		return ""
	}
	return s.Creds.UserID
}

// RequireViewer fails unless someone is signed in.
func (s *Session) RequireViewer() error {
	if s.ViewerID() == "" {
		return clierrors.AuthError("Not logged in")
	}
	return nil
}

// Close releases the overlay store.
func (s *Session) Close() error {
	if s.closeStore == nil {
		return nil
	}
	return s.closeStore()
}

// views pairs posts with the viewer's reactions. A failed reaction lookup
// leaves every post unreacted rather than failing the view.
func (s *Session) views(ctx context.Context, posts []api.Post) []formatter.PostView {
	reactions := map[string]api.ReactionSet{}
	if viewer := s.ViewerID(); viewer != "" && len(posts) > 0 {
		ids := make([]string, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		got, err := s.API.ViewerReactions(ctx, viewer, ids)
		if err != nil {
			logger.Warn("Failed to load viewer reactions", "error", err)
		} else {
			reactions = got
		}
	}

	views := make([]formatter.PostView, len(posts))
	for i, p := range posts {
		views[i] = formatter.PostView{Post: p, Reactions: interaction.StateFrom(reactions[p.ID])}
	}
	return views
}

// visibleAuthors is the viewer plus everyone they follow.
func (s *Session) visibleAuthors(ctx context.Context) (map[string]bool, error) {
	viewer := s.ViewerID()
	if viewer == "" {
		return map[string]bool{}, nil
	}
	following, err := s.API.FollowingIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	visible := map[string]bool{viewer: true}
	for _, id := range following {
		visible[id] = true
	}
	return visible, nil
}
