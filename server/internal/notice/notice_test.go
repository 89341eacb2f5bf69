package notice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trovedash/console/server/internal/notice"
	"github.com/trovedash/console/server/internal/testutils"
)

func TestList(t *testing.T) {
	t.Run("zero value", func(t *testing.T) {
		var l notice.List
		assert.Equal(t, 0, l.Len())
		assert.Equal(t, []notice.Notice{}, l.Notices())

		var nilList *notice.List
		assert.Equal(t, 0, nilList.Len())
		assert.Empty(t, nilList.Notices())
	})

	t.Run("keeps order and drops duplicates", func(t *testing.T) {
		var l notice.List
		l.Add(notice.LevelWarning, "Unable to obtain flavors.")
		l.Success(`Launched cluster "c1"`)
		l.Add(notice.LevelWarning, "Unable to obtain flavors.")
		l.Error("Unable to obtain flavors.")

		assert.Equal(t, []notice.Notice{
			{Level: notice.LevelWarning, Message: "Unable to obtain flavors."},
			{Level: notice.LevelSuccess, Message: `Launched cluster "c1"`},
			{Level: notice.LevelError, Message: "Unable to obtain flavors."},
		}, l.Notices())
	})

	t.Run("degraded", func(t *testing.T) {
		var l notice.List
		logger := testutils.Logger(t)
		l.Degraded(logger, errors.New("boom"), "Unable to obtain datastores.")
		l.Degraded(logger, errors.New("boom again"), "Unable to obtain datastores.")

		assert.Equal(t, []notice.Notice{
			{Level: notice.LevelWarning, Message: "Unable to obtain datastores."},
		}, l.Notices())
	})

	t.Run("notices returns a copy", func(t *testing.T) {
		var l notice.List
		assert.True(t, l.Add(notice.LevelInfo, "hello"))
		assert.False(t, l.Add(notice.LevelInfo, "hello"))
		out := l.Notices()
		out[0].Message = "changed"
		assert.Equal(t, "hello", l.Notices()[0].Message)
	})

}
