package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Player_Mention_Uses_Username(t *testing.T) {
	// Arrange
	p := Player{UserID: 7, Username: "night_owl", FirstName: "Ann"}

	// Act
	mention := p.Mention()

	// Assert
	require.Equal(t, `@night\_owl`, mention)
}

func Test_Player_Mention_Links_User_Without_Username(t *testing.T) {
	// Arrange
	p := Player{UserID: 42, FirstName: "Ann"}

	// Act
	mention := p.Mention()

	// Assert
	require.Equal(t, "[Ann](tg://user?id=42)", mention)
}

func Test_Player_Location_Falls_Back_On_Bad_Zone(t *testing.T) {
	// Arrange
	p := Player{Timezone: "Nowhere/Special"}

	// Act
	loc := p.Location(time.UTC)

	// Assert
	require.Equal(t, time.UTC, loc)
}

func Test_Player_SyncNames_Reports_Change(t *testing.T) {
	// Arrange
	p := Player{Username: "a", FirstName: "A"}

	// Act & Assert
	require.False(t, p.SyncNames("a", "A", ""))
	require.True(t, p.SyncNames("b", "A", ""))
	require.Equal(t, "b", p.Username)
}

func Test_ValidateTimezone_Rejects_Unknown_Zone(t *testing.T) {
	// Act
	_, err := ValidateTimezone("Mars/Olympus")

	// Assert
	require.ErrorIs(t, err, ErrUnknownTimezone)
}
