package lifecycle

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestEngine_BulletinWithoutEvents(t *testing.T) {
	te := newTestEngine(t)

	// Ended events are not listed.
	createRaffle(t, te, "Dragon Claws", te.now.Add(-time.Hour), nil)

	require.NoError(t, te.PostBulletin(te.ctx))
	require.Empty(t, te.dispatcher.Posted)
}

func TestEngine_Bulletin(t *testing.T) {
	te := newTestEngine(t)
	createRaffle(t, te, "Dragon Claws", te.now.Add(time.Hour), nil)
	createActivity(t, te, te.now.Add(3*time.Hour))

	require.NoError(t, te.PostBulletin(te.ctx))

	posted := te.dispatcher.PostedTo(testutil.AnnouncementsChannel)
	require.Len(t, posted, 1)
	require.Equal(t, "Clan Bulletin", posted[0].Announcement.Title)

	fields := posted[0].Announcement.Fields
	require.Len(t, fields, 2)
	require.Equal(t, "Raffles", fields[0].Name)
	require.True(t, strings.HasPrefix(fields[0].Value, "**Dragon Claws** ends <t:"))
	require.Equal(t, "Upcoming Events", fields[1].Name)
}

func TestAppendField_Truncate(t *testing.T) {
	lines := []string{}
	for i := 0; i < 100; i++ {
		lines = append(lines, strings.Repeat("x", 20))
	}

	fields := appendField(nil, "Raffles", lines)
	require.Len(t, fields, 1)
	require.Len(t, fields[0].Value, maxFieldLength)
	require.True(t, strings.HasSuffix(fields[0].Value, "..."))

	require.Empty(t, appendField(nil, "Raffles", nil))
}

func TestAppendField_TruncateMultiByte(t *testing.T) {
	lines := []string{}
	for i := 0; i < 100; i++ {
		lines = append(lines, strings.Repeat("é", 20))
	}

	fields := appendField(nil, "Giveaways", lines)
	require.Len(t, fields, 1)
	require.True(t, utf8.ValidString(fields[0].Value))
	require.Equal(t, maxFieldLength, utf8.RuneCountInString(fields[0].Value))
	require.True(t, strings.HasSuffix(fields[0].Value, "..."))
}
