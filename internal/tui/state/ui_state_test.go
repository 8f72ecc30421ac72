package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUIStateDefaults(t *testing.T) {
	u := NewUIState()
	assert.Equal(t, defaultViewportWidth, u.GetWidth())
	assert.Equal(t, defaultViewportHeight, u.GetHeight())

	u.SetWidth(0)
	u.SetHeight(-1)
	assert.Equal(t, defaultViewportWidth, u.GetWidth())
	assert.Equal(t, defaultViewportHeight, u.GetHeight())
}

func TestUIStateModesAreExclusive(t *testing.T) {
	u := NewUIState()
	u.SetSearchMode(true)
	u.AppendToSearchQuery('a', 'b')
	assert.Equal(t, "ab", u.GetSearchQuery())

	u.SetCommandMode(true)
	assert.True(t, u.IsCommandMode())
	assert.False(t, u.IsSearchMode())
	assert.Equal(t, "ab", u.GetSearchQuery())

	u.AppendToCommandQuery([]rune("page 2")...)
	u.BackspaceCommandQuery()
	assert.Equal(t, "page ", u.GetCommandQuery())

	u.SetCommandMode(false)
	assert.Empty(t, u.GetCommandQuery())
}

func TestUIStateBackspaceHandlesRunes(t *testing.T) {
	u := NewUIState()
	u.SetSearchQuery("café")
	u.BackspaceSearchQuery()
	assert.Equal(t, "caf", u.GetSearchQuery())

	u.SetSearchQuery("")
	u.BackspaceSearchQuery()
	assert.Empty(t, u.GetSearchQuery())
}

func TestUIStateViewportFitAndScroll(t *testing.T) {
	u := NewUIState()
	u.SetWidth(100)
	u.SetHeight(10)
	u.FitViewport(4)
	vp := u.GetViewport()
	assert.Equal(t, 100, vp.Width)
	assert.Equal(t, 6, vp.Height)

	u.FitViewport(20)
	assert.Equal(t, 1, vp.Height)

	u.FitViewport(4)
	vp.SetContent(strings.Repeat("line\n", 30))
	u.Scroll(3)
	assert.Equal(t, 3, vp.YOffset)
	u.Scroll(-10)
	assert.Equal(t, 0, vp.YOffset)
}
