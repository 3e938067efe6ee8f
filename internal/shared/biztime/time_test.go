package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDayUTC(t *testing.T) {
	require.NoError(t, Init("America/New_York"))
	defer func() { _ = Init("UTC") }()

	// 03:00 UTC on Jan 2 is still Jan 1 in New York.
	in := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 1, 5, 0, 0, 0, time.UTC), StartOfDayUTC(in))
}

func TestInit_RejectsUnknownZone(t *testing.T) {
	assert.Error(t, Init("Mars/Olympus_Mons"))
	assert.Equal(t, time.UTC, Location())
}

func TestSetNowFuncForTest(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	restore := SetNowFuncForTest(func() time.Time { return fixed })
	assert.Equal(t, fixed.UTC(), NowUTC())
	restore()
	assert.NotEqual(t, fixed.UTC(), NowUTC())
}
