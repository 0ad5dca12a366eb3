package api

import (
	"context"
	"fmt"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	json "github.com/json-iterator/go"
)

// InsertReaction creates the (postID, userID) edge of the given kind.
// A duplicate edge comes back as an error satisfying IsDuplicate.
func (c *Client) InsertReaction(ctx context.Context, kind ReactionKind, postID, userID string) error {
	table := kind.Table()
	if table == "" {
		return fmt.Errorf("unknown reaction kind %q", kind)
	}
	logger.Debug("Inserting reaction", "kind", kind, "post_id", postID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=minimal").
		SetBody(reactionRow{PostID: postID, UserID: userID}).
		Post(restPrefix + "/" + table)
	if err := CheckResponse(resp, err); err != nil {
		return fmt.Errorf("failed to add %s: %w", kind, err)
	}
	return nil
}

// DeleteReaction removes the (postID, userID) edge of the given kind.
// Deleting an edge that does not exist succeeds.
func (c *Client) DeleteReaction(ctx context.Context, kind ReactionKind, postID, userID string) error {
	table := kind.Table()
	if table == "" {
		return fmt.Errorf("unknown reaction kind %q", kind)
	}
	logger.Debug("Deleting reaction", "kind", kind, "post_id", postID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"post_id": eq(postID),
			"user_id": eq(userID),
		}).
		Delete(restPrefix + "/" + table)
	if err := CheckResponse(resp, err); err != nil {
		return fmt.Errorf("failed to remove %s: %w", kind, err)
	}
	return nil
}

// ViewerReactions returns the viewer's edges on each of postIDs. Posts without
// any edge are absent from the map.
func (c *Client) ViewerReactions(ctx context.Context, userID string, postIDs []string) (map[string]ReactionSet, error) {
	out := make(map[string]ReactionSet)
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}

	for _, kind := range []ReactionKind{ReactionLike, ReactionDislike, ReactionRepost} {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"select":  "post_id,user_id",
				"user_id": eq(userID),
				"post_id": inList(postIDs),
			}).
			Get(restPrefix + "/" + kind.Table())
		if err := CheckResponse(resp, err); err != nil {
			return nil, fmt.Errorf("failed to fetch %s edges: %w", kind, err)
		}

		var rows []reactionRow
		if err := json.Unmarshal(resp.Body(), &rows); err != nil {
			return nil, fmt.Errorf("failed to decode %s edges: %w", kind, err)
		}
		for _, r := range rows {
			set := out[r.PostID]
			switch kind {
			case ReactionLike:
				set.Liked = true
			case ReactionDislike:
				set.Disliked = true
			case ReactionRepost:
				set.Reposted = true
			}
			out[r.PostID] = set
		}
	}
	return out, nil
}
