package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestModerator(t *testing.T) Moderator {
	t.Helper()
	moderator, err := NewModerator([]string{"seed phrase", "private key"}, '*')
	require.NoError(t, err)
	return moderator
}

func TestModerator_Review_Redacts_Blocked_Terms(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	review := moderator.Review("send me your seed phrase and win big")

	req.Equal(1, review.Hits)
	req.NotContains(review.Clean, "seed phrase")
	req.Contains(review.Clean, "send me your")
	req.Contains(review.Clean, "win big")
}

func TestModerator_Review_Is_Case_And_Separator_Insensitive(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	variants := []string{
		"your SEED PHRASE please",
		"your s-e-e-d p.h.r.a.s.e please",
		"your Seed  Phrase please",
	}
	for _, v := range variants {
		review := moderator.Review(v)
		req.Equal(1, review.Hits, "input: %s", v)
		req.NotContains(strings.ToLower(review.Clean), "seed")
	}
}

func TestModerator_Review_Redaction_Preserves_Spacing(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	review := moderator.Review("send me your seed phrase now")

	req.Equal(1, review.Hits)
	req.Equal("send me your **** ****** now", review.Clean)
}

func TestModerator_Review_Clean_Content_Passes_Through(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	content := "gm everyone, proposal 42 is live"
	review := moderator.Review(content)

	req.Zero(review.Hits)
	req.Equal(content, review.Clean)
}

func TestModerator_Review_Detects_Language(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t)

	review := moderator.Review("The governance proposal passed with an overwhelming majority of votes")
	req.Equal("en", review.Lang)
}

func TestLoadBlocklist_Embedded_Lists(t *testing.T) {
	req := require.New(t)

	blocklist, err := LoadBlocklist()
	req.NoError(err)

	req.Contains(blocklist.Languages, "en")
	req.Contains(blocklist.Languages, "fr")
	req.Contains(blocklist.Terms, "seed phrase")
	// Comment lines never become terms
	for _, term := range blocklist.Terms {
		req.False(strings.HasPrefix(term, "#"))
	}
}
