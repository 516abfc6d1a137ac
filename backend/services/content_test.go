package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socdocs/backend/models"
)

func TestInitItemStudentDraft(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	_, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)

	var page models.DocPage
	err = InitItem(db, alice, &page, CreateInput{Title: "Wazuh Deployment Overview", Body: "..."})
	require.NoError(t, err)

	assert.Equal(t, "wazuh-deployment-overview", page.Slug)
	assert.Equal(t, models.VisibilityTeam, page.Visibility)
	assert.False(t, page.Approved)
	require.NotNil(t, page.TeamID)
	assert.Equal(t, *alice.TeamID, *page.TeamID)
	require.NotNil(t, page.OwnerID)
	assert.Equal(t, alice.ID, *page.OwnerID)
}

func TestInitItemRequiresTeamForStudents(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")

	var page models.DocPage
	err := InitItem(db, alice, &page, CreateInput{Title: "No Team Yet"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestInitItemStaffGlobalContent(t *testing.T) {
	db := newTestDB(t)
	staff := newStaff(t, db, "instructor")

	t.Run("draft by default", func(t *testing.T) {
		var page models.DocPage
		err := InitItem(db, staff, &page, CreateInput{Title: "Course Syllabus"})
		require.NoError(t, err)
		assert.Nil(t, page.TeamID)
		assert.Equal(t, models.VisibilityTeam, page.Visibility)
		assert.False(t, page.Approved)
	})

	t.Run("published when the flag says so", func(t *testing.T) {
		var page models.DocPage
		err := InitItem(db, staff, &page, CreateInput{Title: "Grading Rubric", PublishNow: true})
		require.NoError(t, err)
		assert.Nil(t, page.TeamID)
		assert.Equal(t, models.VisibilityClass, page.Visibility)
		assert.True(t, page.Approved)
		assert.True(t, page.Published())
	})
}

func TestUniqueSlugSuffixesDuplicates(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	_, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)

	first := models.DocPage{}
	require.NoError(t, InitItem(db, alice, &first, CreateInput{Title: "Runbook"}))
	require.NoError(t, db.Create(&first).Error)

	second := models.DocPage{}
	require.NoError(t, InitItem(db, alice, &second, CreateInput{Title: "Runbook"}))
	assert.Equal(t, "runbook-2", second.Slug)
}

func TestResolveCategory(t *testing.T) {
	db := newTestDB(t)

	t.Run("empty choice means no category", func(t *testing.T) {
		cat, err := ResolveCategory(db, CategoryChoice{})
		require.NoError(t, err)
		assert.Nil(t, cat)
	})

	t.Run("new name creates a category once", func(t *testing.T) {
		cat, err := ResolveCategory(db, CategoryChoice{NewName: "Detection"})
		require.NoError(t, err)
		require.NotNil(t, cat)
		assert.Equal(t, "detection", cat.Slug)

		again, err := ResolveCategory(db, CategoryChoice{NewName: "Detection"})
		require.NoError(t, err)
		assert.Equal(t, cat.ID, again.ID)
	})

	t.Run("existing id resolves", func(t *testing.T) {
		cat, err := ResolveCategory(db, CategoryChoice{NewName: "Response"})
		require.NoError(t, err)
		got, err := ResolveCategory(db, CategoryChoice{ID: &cat.ID})
		require.NoError(t, err)
		assert.Equal(t, cat.ID, got.ID)
	})

	t.Run("both sides set is rejected", func(t *testing.T) {
		cat, err := ResolveCategory(db, CategoryChoice{NewName: "Forensics"})
		require.NoError(t, err)
		_, err = ResolveCategory(db, CategoryChoice{ID: &cat.ID, NewName: "Other"})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown id is rejected", func(t *testing.T) {
		id := uint(9999)
		_, err := ResolveCategory(db, CategoryChoice{ID: &id})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestPublishTeamDraft(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	_, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)

	policy := models.Policy{}
	require.NoError(t, InitItem(db, alice, &policy, CreateInput{Title: "IR Plan"}))
	require.NoError(t, db.Create(&policy).Error)

	// a previously blocked anonymous viewer…
	perms := ResolveVisibility(&policy.ContentFields, Viewer{})
	require.False(t, perms.CanView)

	require.NoError(t, Publish(db, alice, &policy))
	assert.Equal(t, models.VisibilityClass, policy.Visibility)
	assert.True(t, policy.Approved)

	// …can now view it
	var saved models.Policy
	require.NoError(t, db.First(&saved, policy.ID).Error)
	perms = ResolveVisibility(&saved.ContentFields, Viewer{})
	assert.True(t, perms.CanView)
}

func TestPublishIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	_, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)

	page := models.DocPage{}
	require.NoError(t, InitItem(db, alice, &page, CreateInput{Title: "SIEM Setup"}))
	require.NoError(t, db.Create(&page).Error)

	require.NoError(t, Publish(db, alice, &page))
	require.NoError(t, Publish(db, alice, &page))

	var saved models.DocPage
	require.NoError(t, db.First(&saved, page.ID).Error)
	assert.Equal(t, models.VisibilityClass, saved.Visibility)
	assert.True(t, saved.Approved)
}

func TestPublishHidesDraftsFromOutsiders(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	carol := newStudent(t, db, "carol")
	_, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)

	page := models.DocPage{}
	require.NoError(t, InitItem(db, alice, &page, CreateInput{Title: "Secret Draft"}))
	require.NoError(t, db.Create(&page).Error)

	// outsiders get not-found, not forbidden: existence must not leak
	err = Publish(db, carol, &page)
	assert.ErrorIs(t, err, ErrNotFound)

	err = Publish(db, nil, &page)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveKeepsTeamVisibility(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	staff := newStaff(t, db, "instructor")
	_, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)

	page := models.DocPage{}
	require.NoError(t, InitItem(db, alice, &page, CreateInput{Title: "Internal Notes"}))
	require.NoError(t, db.Create(&page).Error)

	require.NoError(t, Approve(db, staff, &page))
	assert.True(t, page.Approved)
	assert.Equal(t, models.VisibilityTeam, page.Visibility)

	// still hidden from anonymous viewers despite approval
	perms := ResolveVisibility(&page.ContentFields, Viewer{})
	assert.False(t, perms.CanView)

	// but publishable by the team from here
	perms = ResolveVisibility(&page.ContentFields, ViewerFor(alice))
	assert.True(t, perms.CanPublish)
}

func TestApproveRequiresStaff(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	_, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)

	page := models.DocPage{}
	require.NoError(t, InitItem(db, alice, &page, CreateInput{Title: "Notes"}))
	require.NoError(t, db.Create(&page).Error)

	err = Approve(db, alice, &page)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestEditItemKeepsPublicationState(t *testing.T) {
	db := newTestDB(t)
	alice := newStudent(t, db, "alice")
	bob := newStudent(t, db, "bob")
	team, err := CreateTeam(db, alice, "RedTeam", DefaultClassSettings())
	require.NoError(t, err)
	_, err = JoinTeam(db, bob, team.JoinCode, DefaultClassSettings())
	require.NoError(t, err)

	page := models.DocPage{}
	require.NoError(t, InitItem(db, alice, &page, CreateInput{Title: "Playbook", Body: "v1"}))
	require.NoError(t, db.Create(&page).Error)
	require.NoError(t, Publish(db, alice, &page))

	// teammates keep editing rights after publication
	require.NoError(t, EditItem(db, bob, &page, "", "v2"))

	var saved models.DocPage
	require.NoError(t, db.First(&saved, page.ID).Error)
	assert.Equal(t, "v2", saved.Body)
	assert.Equal(t, models.VisibilityClass, saved.Visibility)
	assert.True(t, saved.Approved)

	carol := newStudent(t, db, "carol")
	err = EditItem(db, carol, &saved, "", "vandalism")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
