package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/interaction"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
	"github.com/fatih/color"
)

var (
	Bold   = color.New(color.Bold)
	Faint  = color.New(color.Faint)
	Accent = color.New(color.FgMagenta)
)

// PostView is a post as shown to one viewer.
type PostView struct {
	api.Post
	Reactions interaction.State `json:"reactions"`
}

// Headers are the table columns of PostRow.
var Headers = []string{"ID", "Author", "Likes", "Dislikes", "Reposts", "Comments", "Age", "Content"}

// PostRow renders a post as a table row.
func PostRow(v PostView, now time.Time) []string {
	return []string{
		v.ID,
		authorName(v.Post),
		counter(v.LikesCount, v.Reactions.Liked),
		counter(v.BrokenHeartsCount, v.Reactions.Disliked),
		counter(v.RepostsCount, v.Reactions.Reposted),
		strconv.Itoa(v.CommentsCount),
		Age(v.CreatedAt, now),
		Truncate(oneLine(v.Content), 48),
	}
}

// PostCard renders a post as a multi-line text card.
func PostCard(v PostView, now time.Time) string {
	var sb strings.Builder

	Bold.Fprint(&sb, authorName(v.Post))
	Faint.Fprintf(&sb, "  %s  %s", Age(v.CreatedAt, now), v.ID)
	if v.IsPinned {
		Accent.Fprint(&sb, "  pinned")
	}
	sb.WriteString("\n")

	if v.Content != "" {
		sb.WriteString(v.Content)
		sb.WriteString("\n")
	}
	if kind := v.MediaKind(); kind != api.MediaNone {
		Faint.Fprintf(&sb, "[%s] %s\n", kind, v.MediaURL)
	}

	fmt.Fprintf(&sb, "%s %s  %s %s  %s %s  comments %d\n",
		mark("♥", v.Reactions.Liked), strconv.Itoa(v.LikesCount),
		mark("💔", v.Reactions.Disliked), strconv.Itoa(v.BrokenHeartsCount),
		mark("⟳", v.Reactions.Reposted), strconv.Itoa(v.RepostsCount),
		v.CommentsCount)
	return sb.String()
}

// PrintPosts writes views in the configured output format.
func PrintPosts(views []PostView) error {
	now := time.Now()
	switch output.GetOutputFormat() {
	case output.FormatJSON:
		return output.PrintJSON(views)
	case output.FormatTable:
		rows := make([][]string, 0, len(views))
		for _, v := range views {
			rows = append(rows, PostRow(v, now))
		}
		output.PrintTable(Headers, rows)
		return nil
	default:
		if len(views) == 0 {
			output.PrintInfo("No posts to show.")
			return nil
		}
		for i, v := range views {
			if i > 0 {
				fmt.Fprintln(output.Out)
			}
			fmt.Fprint(output.Out, PostCard(v, now))
		}
		return nil
	}
}

// Age renders how long ago t was, e.g. "5m", "3h", "2d".
func Age(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func authorName(p api.Post) string {
	if p.Author == nil {
		return p.AuthorID
	}
	name := "@" + p.Author.Username
	if p.Author.DisplayName != "" {
		name = p.Author.DisplayName + " " + name
	}
	if p.Author.IsPrivate {
		name += " (private)"
	}
	return name
}

func counter(n int, mine bool) string {
	s := strconv.Itoa(n)
	if mine {
		s += "*"
	}
	return s
}

func mark(symbol string, on bool) string {
	if on {
		return color.New(color.FgRed, color.Bold).Sprint(symbol)
	}
	return symbol
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
