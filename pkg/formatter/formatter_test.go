package formatter

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/interaction"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func sample() PostView {
	return PostView{
		Post: api.Post{
			ID:                "p1",
			AuthorID:          "a1",
			Author:            &api.Author{ID: "a1", Username: "ann", DisplayName: "Ann"},
			Content:           "first line\nsecond line",
			MediaURL:          "https://cdn.example/clip.mp4",
			LikesCount:        3,
			BrokenHeartsCount: 1,
			RepostsCount:      2,
			CommentsCount:     4,
			CreatedAt:         now.Add(-3 * time.Hour),
		},
		Reactions: interaction.State{Liked: true},
	}
}

func TestAge(t *testing.T) {
	assert.Equal(t, "now", Age(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m", Age(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h", Age(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d", Age(now.Add(-50*time.Hour), now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "héll…", Truncate("héllo wörld", 5))
}

func TestPostRow(t *testing.T) {
	row := PostRow(sample(), now)

	assert.Equal(t, []string{"p1", "Ann @ann", "3*", "1", "2", "4", "3h", "first line second line"}, row)
	assert.Len(t, row, len(Headers))
}

func TestPostCard(t *testing.T) {
	color.NoColor = true
	card := PostCard(sample(), now)

	assert.True(t, strings.HasPrefix(card, "Ann @ann  3h  p1\n"))
	assert.Contains(t, card, "first line\nsecond line\n")
	assert.Contains(t, card, "[video] https://cdn.example/clip.mp4")
	assert.Contains(t, card, "comments 4")
}

func TestPostCard_PrivateWithoutMedia(t *testing.T) {
	color.NoColor = true
	v := sample()
	v.MediaURL = ""
	v.Author.IsPrivate = true

	card := PostCard(v, now)
	assert.NotContains(t, card, "[")
	assert.Contains(t, card, "(private)")
}

func TestPrintPosts_JSON(t *testing.T) {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("output.format", "json")
	buf := &bytes.Buffer{}
	prev := output.Out
	output.Out = buf
	defer func() { output.Out = prev }()

	require.NoError(t, PrintPosts([]PostView{sample()}))
	assert.Contains(t, buf.String(), `"likes_count": 3`)
	assert.Contains(t, buf.String(), `"liked": true`)
}
