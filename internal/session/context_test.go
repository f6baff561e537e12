package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tommytrillva/midnight-sub001/internal/model"
)

func TestContext_Defaults(t *testing.T) {
	ctx := NewContext()

	s := ctx.GetSession()
	assert.Equal(t, "No session loaded", s.Name)

	track := ctx.GetTrack()
	assert.Equal(t, "No track loaded", track.DisplayName)

	assert.Equal(t, 0, ctx.CaptureFrame.Value())
}

func TestContext_SetSessionResetsFrameCounter(t *testing.T) {
	ctx := NewContext()
	ctx.CaptureFrame.Set(500)

	ctx.SetSession(
		&model.Session{Name: "midnight run"},
		&model.Track{DisplayName: "Docks"},
	)

	assert.Equal(t, "midnight run", ctx.GetSession().Name)
	assert.Equal(t, "Docks", ctx.GetTrack().DisplayName)
	assert.Equal(t, 0, ctx.CaptureFrame.Value())
}
