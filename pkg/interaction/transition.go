// Package interaction implements the per-post reaction state machine and the
// optimistic effect runner that drives it against the backend.
package interaction

import (
	"errors"
	"fmt"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
)

// ErrNoop is returned for an action that does not apply to the current state,
// such as Unlike on a post that is not liked.
var ErrNoop = errors.New("action does not change reaction state")

// State is the viewer's reactions on one post. Liked and Disliked are never
// both true.
type State struct {
	Liked    bool `json:"liked"`
	Disliked bool `json:"disliked"`
	Reposted bool `json:"reposted"`
}

// StateFrom converts the viewer's backend edges into a State.
func StateFrom(r api.ReactionSet) State {
	s := State{Liked: r.Liked, Disliked: r.Disliked, Reposted: r.Reposted}
	if s.Liked && s.Disliked {
		// Should not happen; prefer the like, matching the order edges are written.
		s.Disliked = false
	}
	return s
}

func (s State) has(kind api.ReactionKind) bool {
	switch kind {
	case api.ReactionLike:
		return s.Liked
	case api.ReactionDislike:
		return s.Disliked
	case api.ReactionRepost:
		return s.Reposted
	}
	return false
}

func (s State) with(kind api.ReactionKind, v bool) State {
	switch kind {
	case api.ReactionLike:
		s.Liked = v
	case api.ReactionDislike:
		s.Disliked = v
	case api.ReactionRepost:
		s.Reposted = v
	}
	return s
}

// opposite is the reaction that excludes kind, if any.
func opposite(kind api.ReactionKind) (api.ReactionKind, bool) {
	switch kind {
	case api.ReactionLike:
		return api.ReactionDislike, true
	case api.ReactionDislike:
		return api.ReactionLike, true
	}
	return "", false
}

// Action is one user request.
type Action int

const (
	Like Action = iota + 1
	Unlike
	Dislike
	Undislike
	Repost
	Unrepost
)

var actionNames = map[Action]string{
	Like:      "like",
	Unlike:    "unlike",
	Dislike:   "dislike",
	Undislike: "undislike",
	Repost:    "repost",
	Unrepost:  "unrepost",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction maps a command name such as "undislike" to its Action.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// Kind is the reaction kind the action is about. It is also the key of the
// controller's in-flight guard.
func (a Action) Kind() api.ReactionKind {
	switch a {
	case Like, Unlike:
		return api.ReactionLike
	case Dislike, Undislike:
		return api.ReactionDislike
	case Repost, Unrepost:
		return api.ReactionRepost
	}
	return ""
}

// ToggleLike picks Like or Unlike for a single "like button" press.
func ToggleLike(s State) Action {
	if s.Liked {
		return Unlike
	}
	return Like
}

// ToggleDislike picks Dislike or Undislike.
func ToggleDislike(s State) Action {
	if s.Disliked {
		return Undislike
	}
	return Dislike
}

// ToggleRepost picks Repost or Unrepost.
func ToggleRepost(s State) Action {
	if s.Reposted {
		return Unrepost
	}
	return Repost
}

// Op is the backend write of an effect.
type Op string

const (
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Effect is one edge write. Its optimistic local counterpart sets the state
// flag of Kind to Value() and moves that counter by Delta().
type Effect struct {
	Kind api.ReactionKind
	Op   Op
}

// Value is the state flag this effect establishes.
func (e Effect) Value() bool {
	return e.Op == OpInsert
}

// Delta is the counter change this effect applies.
func (e Effect) Delta() int {
	if e.Op == OpInsert {
		return 1
	}
	return -1
}

// Apply returns s with the effect's flag set.
func (e Effect) Apply(s State) State {
	return s.with(e.Kind, e.Value())
}

func (e Effect) String() string {
	return string(e.Op) + " " + string(e.Kind)
}

// Transition computes the state after a and the ordered writes that get the
// backend there. Moving between liked and disliked is a compound of two
// writes: the held reaction is deleted before the new one is inserted.
func Transition(s State, a Action) (State, []Effect, error) {
	var effects []Effect

	switch a {
	case Like:
		if s.Liked {
			return s, nil, ErrNoop
		}
		if s.Disliked {
			effects = append(effects, Effect{Kind: api.ReactionDislike, Op: OpDelete})
		}
		effects = append(effects, Effect{Kind: api.ReactionLike, Op: OpInsert})
	case Dislike:
		if s.Disliked {
			return s, nil, ErrNoop
		}
		if s.Liked {
			effects = append(effects, Effect{Kind: api.ReactionLike, Op: OpDelete})
		}
		effects = append(effects, Effect{Kind: api.ReactionDislike, Op: OpInsert})
	case Repost:
		if s.Reposted {
			return s, nil, ErrNoop
		}
		effects = append(effects, Effect{Kind: api.ReactionRepost, Op: OpInsert})
	case Unlike, Undislike, Unrepost:
		if !s.has(a.Kind()) {
			return s, nil, ErrNoop
		}
		effects = append(effects, Effect{Kind: a.Kind(), Op: OpDelete})
	default:
		return s, nil, fmt.Errorf("unknown action %d", int(a))
	}

	next := s
	for _, e := range effects {
		next = e.Apply(next)
	}
	return next, effects, nil
}
