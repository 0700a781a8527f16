package isodate_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimveo/internal/failure"
	"trimveo/internal/isodate"
)

func TestNormalizeEveryLength(t *testing.T) {
	const source = "202103041530459"
	want := map[int]string{
		4:  "2021",
		6:  "2021-03",
		8:  "2021-03-04",
		10: "2021-03-04T15:00",
		12: "2021-03-04T15:30",
		14: "2021-03-04T15:30:45",
		15: "2021-03-04T15:30:45",
	}
	for n := 0; n <= len(source); n++ {
		got, err := isodate.Normalize(source[:n])
		expected, ok := want[n]
		if !ok {
			require.Error(t, err, "length %d", n)
			assert.True(t, errors.Is(err, failure.ErrDateFormat), "length %d", n)
			var ferr *isodate.FormatError
			require.True(t, errors.As(err, &ferr))
			assert.Equal(t, source[:n], ferr.Value)
			continue
		}
		require.NoError(t, err, "length %d", n)
		assert.Equal(t, expected, got, "length %d", n)
	}
}

func TestNormalizeIgnoresTrailingDigitsBeyondSeconds(t *testing.T) {
	got, err := isodate.Normalize("20210304153045" + strings.Repeat("9", 6))
	require.NoError(t, err)
	assert.Equal(t, "2021-03-04T15:30:45", got)
}

func TestNormalizeRejectsNonDigits(t *testing.T) {
	for _, value := range []string{"20x1", "2021-03-04", "2021 3"} {
		_, err := isodate.Normalize(value)
		assert.Error(t, err, value)
	}
}
