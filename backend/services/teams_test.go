package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socdocs/backend/models"
)

func TestCreateTeamAndJoinByCode(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	bob := newStudent(t, db, "bob")

	team, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)
	assert.Equal(t, "RedTeam", team.Name)
	assert.NotEmpty(t, team.JoinCode)
	require.NotNil(t, alice.TeamID)
	assert.Equal(t, team.ID, *alice.TeamID)
	require.NotNil(t, team.OwnerID)
	assert.Equal(t, alice.ID, *team.OwnerID)

	joined, err := JoinTeam(db, bob, team.JoinCode, DefaultClassSettings())
	require.NoError(t, err)
	assert.Equal(t, team.ID, joined.ID)

	members, err := TeamMembers(db, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Username)
	assert.Equal(t, "bob", members[1].Username)
}

func TestCreateTeamDuplicateName(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	bob := newStudent(t, db, "bob")

	_, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)

	_, err = CreateTeam(db, bob, "RedTeam", DefaultClassSettings())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreateTeamRespectsClassToggle(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	staff := newStaff(t, db, "instructor")

	disabled := ClassSettings{StudentsCanCreateTeams: false}

	_, err := CreateTeam(db, alice, "RedTeam", disabled)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// staff is exempt from the toggle
	_, err = CreateTeam(db, staff, "BlueTeam", disabled)
	require.NoError(t, err)
}

func TestCreateTeamWhenAlreadyOnOne(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")

	_, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)

	_, err = CreateTeam(db, alice, "SecondTeam", DefaultClassSettings())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestJoinTeamValidation(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")

	_, err := JoinTeam(db, alice, "", DefaultClassSettings())
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = JoinTeam(db, alice, "definitely-not-a-code", DefaultClassSettings())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestJoinCodesAreUniqueAcrossManyTeams(t *testing.T) {
	db := newTestDB(t)

	const n = 1000
	codes := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		user := newStudent(t, db, fmt.Sprintf("user%d", i))
		team, err := CreateTeam(db, user, "team-"+user.Username, DefaultClassSettings())
		require.NoError(t, err)
		codes[team.JoinCode] = true
	}
	assert.Len(t, codes, n)
}

func TestLoadClassSettingsDefaults(t *testing.T) {
	db := newTestDB(t)

	settings, err := LoadClassSettings(db)
	require.NoError(t, err)
	assert.True(t, settings.StudentsCanCreateTeams)

	// repeated loads reuse the singleton row
	var count int64
	db.Model(&models.ClassConfig{}).Count(&count)
	assert.EqualValues(t, 1, count)

	_, err = LoadClassSettings(db)
	require.NoError(t, err)
	db.Model(&models.ClassConfig{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
