package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	ts, err = NewTimeStringFromString("13:00:00")
	require.NoError(t, err)
	assert.Equal(t, "13:00", ts.String())

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_IsAfter(t *testing.T) {
	start, _ := NewTimeStringFromString("09:00")
	end, _ := NewTimeStringFromString("10:00")

	assert.True(t, end.IsAfter(start))
	assert.False(t, start.IsAfter(end))
	assert.False(t, start.IsAfter(start))
}

func TestTimeString_ScanAndValue(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("10:15:00")))
	assert.Equal(t, "10:15", ts.String())

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 8, 5, 0, 0, time.UTC)))
	assert.Equal(t, "08:05", ts.String())

	v, err := ts.Value()
	require.NoError(t, err)
	assert.Equal(t, "08:05", v)

	require.NoError(t, ts.Scan(nil))
	assert.Equal(t, "", ts.String())

	v, err = ts.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, ts.Scan(42))
}
