package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_ComparisonText(t *testing.T) {
	t.Run("short content kept whole", func(t *testing.T) {
		d := Document{ID: "about.txt", Content: "We build things."}
		assert.Equal(t, "about.txt We build things.", d.ComparisonText())
	})

	t.Run("long content truncated to prefix", func(t *testing.T) {
		d := Document{ID: "long.txt", Content: strings.Repeat("a", 1500)}
		got := d.ComparisonText()
		assert.Equal(t, len("long.txt ")+ComparisonPrefixLength, len(got))
	})

	t.Run("prefix counts characters not bytes", func(t *testing.T) {
		d := Document{ID: "x", Content: strings.Repeat("é", 1200)}
		got := d.ComparisonText()
		assert.Equal(t, 2+ComparisonPrefixLength, len([]rune(got)))
	})
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "", Prefix("abc", 0))
	assert.Equal(t, "ab", Prefix("abc", 2))
	assert.Equal(t, "abc", Prefix("abc", 3))
	assert.Equal(t, "abc", Prefix("abc", 10))
}

func TestIssue(t *testing.T) {
	issue := Issue{Path: "Blog/a.txt", Err: ErrRankingIO}

	assert.Equal(t, "Blog/a.txt: ranking I/O error", issue.Error())
	assert.True(t, errors.Is(issue, ErrRankingIO))
	assert.Equal(t, "x", Issue{Path: "x"}.Error())
}
