package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/overlay"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/prompter"
)

// OverlayService inspects the session's counter overlay.
type OverlayService struct {
	session *Session
}

// NewOverlayService creates a new overlay service
func NewOverlayService(session *Session) *OverlayService {
	return &OverlayService{session: session}
}

// Show prints every overlay entry, most recently updated first.
func (s *OverlayService) Show() error {
	snapshot := s.session.Overlay.Snapshot()
	if output.GetOutputFormat() == output.FormatJSON {
		return output.PrintJSON(snapshot)
	}
	if len(snapshot) == 0 {
		output.PrintInfo("Overlay is empty.")
		return nil
	}

	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := snapshot[ids[i]], snapshot[ids[j]]
		if a.UpdatedAt != b.UpdatedAt {
			return a.UpdatedAt > b.UpdatedAt
		}
		return ids[i] < ids[j]
	})

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, overlayRow(id, snapshot[id]))
	}
	output.PrintTable([]string{"Post", "Likes", "Dislikes", "Reposts", "Comments", "Updated"}, rows)
	return nil
}

// Flush empties the overlay after confirmation unless force is set.
func (s *OverlayService) Flush(ctx context.Context, force bool) error {
	if !force {
		ok, err := prompter.PromptConfirm("Discard all locally remembered counters?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	n := s.session.Overlay.Len()
	if err := s.session.Overlay.Flush(ctx); err != nil {
		return clierrors.WriteError("Could not flush counter overlay", err)
	}
	output.PrintSuccess("Flushed %d overlay entries", n)
	return nil
}

func overlayRow(id string, e overlay.Entry) []string {
	field := func(v *int) string {
		if v == nil {
			return "-"
		}
		return strconv.Itoa(*v)
	}
	return []string{
		id,
		field(e.Likes),
		field(e.BrokenHearts),
		field(e.Reposts),
		field(e.Comments),
		time.UnixMilli(e.UpdatedAt).Format(time.RFC3339),
	}
}
