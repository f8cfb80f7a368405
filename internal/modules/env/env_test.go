package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_GetDurationOrDefault_Returns_Default_When_Missing(t *testing.T) {
	// Act
	val, err := GetDurationOrDefault("SLOTBOT_TEST_MISSING_DURATION", time.Hour)

	// Assert
	require.NoError(t, err)
	require.Equal(t, time.Hour, val)
}

func Test_GetDurationOrDefault_Parses_Value(t *testing.T) {
	// Arrange
	t.Setenv("SLOTBOT_TEST_DURATION", "90m")

	// Act
	val, err := GetDurationOrDefault("SLOTBOT_TEST_DURATION", time.Hour)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, val)
}

func Test_GetDurationOrDefault_Fails_On_Garbage(t *testing.T) {
	// Arrange
	t.Setenv("SLOTBOT_TEST_DURATION", "soon")

	// Act
	_, err := GetDurationOrDefault("SLOTBOT_TEST_DURATION", time.Hour)

	// Assert
	require.ErrorIs(t, err, ErrConversionFailed)
}

func Test_GetIntListOrDefault_Parses_Comma_Separated_Values(t *testing.T) {
	// Arrange
	t.Setenv("SLOTBOT_TEST_HOURS", "18, 19,,0")

	// Act
	val, err := GetIntListOrDefault("SLOTBOT_TEST_HOURS", nil)

	// Assert
	require.NoError(t, err)
	require.Equal(t, []int{18, 19, 0}, val)
}

func Test_GetInt64ListOrDefault_Returns_Default_When_Blank(t *testing.T) {
	// Arrange
	t.Setenv("SLOTBOT_TEST_CHATS", "  ")

	// Act
	val, err := GetInt64ListOrDefault("SLOTBOT_TEST_CHATS", []int64{1})

	// Assert
	require.NoError(t, err)
	require.Equal(t, []int64{1}, val)
}

func Test_MustGetString_Panics_When_Missing(t *testing.T) {
	require.Panics(t, func() { MustGetString("SLOTBOT_TEST_MISSING_STRING") })
}
