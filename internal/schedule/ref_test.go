package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefRoundTrip(t *testing.T) {
	seriesID := uuid.New()
	ts := time.Date(2024, time.May, 7, 14, 30, 0, 0, time.UTC)

	key := EncodeRef(seriesID, ts)
	ref, err := ParseRef(key)
	require.NoError(t, err)
	assert.True(t, ref.Virtual())
	assert.Equal(t, seriesID, ref.SeriesID)
	assert.True(t, ref.At.Equal(ts))
	assert.Equal(t, key, ref.String())
}

func TestRefRoundTripNormalizesOffsets(t *testing.T) {
	seriesID := uuid.New()
	loc := time.FixedZone("plus2", 2*3600)
	ts := time.Date(2024, time.May, 7, 16, 30, 0, 0, loc)

	ref, err := ParseRef(EncodeRef(seriesID, ts))
	require.NoError(t, err)
	assert.True(t, ref.At.Equal(ts), "same instant survives the round trip")
}

func TestParseRefPersisted(t *testing.T) {
	ref, err := ParseRef("42")
	require.NoError(t, err)
	assert.False(t, ref.Virtual())
	assert.Equal(t, int64(42), ref.ID)
	assert.Equal(t, "42", ref.String())
}

func TestParseRefErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrNotFound},
		{"garbage", "not-a-ref", ErrNotFound},
		{"uuid without timestamp", uuid.NewString(), ErrNotFound},
		{"bad uuid prefix", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz:2024-01-01T09:00:00Z", ErrNotFound},
		{"bad timestamp suffix", uuid.NewString() + ":yesterday", ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRef(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
