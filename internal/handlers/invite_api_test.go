package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
)

func TestCreateInvite(t *testing.T) {
	engine := setupAPI(t)
	ownerToken := registerUser(t, engine, "owner")
	memberToken := registerUser(t, engine, "member")

	projectID := createProject(t, engine, ownerToken, "Apollo")

	t.Run("with duration and cap", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/projects/%d/invites", projectID), ownerToken, gin.H{
			"duration":  "7d",
			"max_usage": 5,
		})
		require.Equal(t, http.StatusCreated, recorder.Code)

		var response struct {
			ExpiresAt   *time.Time `json:"expires_at"`
			MaxUsage    *int       `json:"max_usage"`
			UsageCount  int        `json:"usage_count"`
			Active      bool       `json:"active"`
			ProjectName string     `json:"project_name"`
		}
		decodeBody(t, recorder, &response)

		require.NotNil(t, response.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *response.ExpiresAt, time.Minute)
		require.NotNil(t, response.MaxUsage)
		assert.Equal(t, 5, *response.MaxUsage)
		assert.Zero(t, response.UsageCount)
		assert.True(t, response.Active)
		assert.Equal(t, "Apollo", response.ProjectName)
	})

	t.Run("invalid duration", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/projects/%d/invites", projectID), ownerToken, gin.H{
			"duration": "7w",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("non positive cap", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/projects/%d/invites", projectID), ownerToken, gin.H{
			"max_usage": 0,
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("only the owner", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/projects/%d/invites", projectID), memberToken, gin.H{})
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}

func TestGetInviteIsPublic(t *testing.T) {
	engine := setupAPI(t)
	ownerToken := registerUser(t, engine, "owner")

	projectID := createProject(t, engine, ownerToken, "Apollo")
	inviteID := createInvite(t, engine, ownerToken, projectID, gin.H{})

	recorder := doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/invites/%d", inviteID), "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		ProjectName           string `json:"project_name"`
		InviteCreatorUsername string `json:"invite_creator_username"`
	}
	decodeBody(t, recorder, &response)

	assert.Equal(t, "Apollo", response.ProjectName)
	assert.Equal(t, "owner", response.InviteCreatorUsername)
}

func TestJoinInvite(t *testing.T) {
	engine := setupAPI(t)
	ownerToken := registerUser(t, engine, "owner")
	joinerToken := registerUser(t, engine, "joiner")

	projectID := createProject(t, engine, ownerToken, "Apollo")
	inviteID := createInvite(t, engine, ownerToken, projectID, gin.H{})

	t.Run("joiner becomes a member", func(t *testing.T) {
		recorder := joinInvite(t, engine, joinerToken, inviteID)
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		getRecorder := doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/projects/%d", projectID), joinerToken, nil)
		assert.Equal(t, http.StatusOK, getRecorder.Code)

		// Everyone on the project gets the join notification.
		var reads int64
		db.DB.Model(&models.NotificationRead{}).Count(&reads)
		assert.EqualValues(t, 2, reads)
	})

	t.Run("joining twice fails", func(t *testing.T) {
		recorder := joinInvite(t, engine, joinerToken, inviteID)
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var response struct {
			Error string `json:"error"`
		}
		decodeBody(t, recorder, &response)
		assert.Equal(t, "User is already a team member", response.Error)
	})

	t.Run("owner cannot join their own project", func(t *testing.T) {
		recorder := joinInvite(t, engine, ownerToken, inviteID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown invite", func(t *testing.T) {
		recorder := joinInvite(t, engine, joinerToken, 9999)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestJoinInviteUsageCap(t *testing.T) {
	engine := setupAPI(t)
	ownerToken := registerUser(t, engine, "owner")

	projectID := createProject(t, engine, ownerToken, "Apollo")
	inviteID := createInvite(t, engine, ownerToken, projectID, gin.H{"max_usage": 2})

	first := registerUser(t, engine, "first")
	second := registerUser(t, engine, "second")
	third := registerUser(t, engine, "third")

	require.Equal(t, http.StatusOK, joinInvite(t, engine, first, inviteID).Code)
	require.Equal(t, http.StatusOK, joinInvite(t, engine, second, inviteID).Code)

	recorder := joinInvite(t, engine, third, inviteID)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response struct {
		Error string `json:"error"`
	}
	decodeBody(t, recorder, &response)
	assert.Equal(t, "Invite usage limit reached", response.Error)

	// A rejected join leaves no membership and no counter bump behind.
	var invite models.Invite
	require.NoError(t, db.DB.First(&invite, inviteID).Error)
	assert.Equal(t, 2, invite.UsageCount)

	var memberships int64
	db.DB.Model(&models.TeamMembership{}).Where("project_id = ?", projectID).Count(&memberships)
	assert.EqualValues(t, 2, memberships)
}

func TestJoinInviteRejectsInactiveAndExpired(t *testing.T) {
	engine := setupAPI(t)
	ownerToken := registerUser(t, engine, "owner")
	joinerToken := registerUser(t, engine, "joiner")

	projectID := createProject(t, engine, ownerToken, "Apollo")

	t.Run("revoked invite", func(t *testing.T) {
		inviteID := createInvite(t, engine, ownerToken, projectID, gin.H{})

		update := doJSON(t, engine, http.MethodPatch, fmt.Sprintf("/api/invites/%d", inviteID), ownerToken, gin.H{
			"active": false,
		})
		require.Equal(t, http.StatusOK, update.Code)

		recorder := joinInvite(t, engine, joinerToken, inviteID)
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var response struct {
			Error string `json:"error"`
		}
		decodeBody(t, recorder, &response)
		assert.Equal(t, "Invite is not active", response.Error)
	})

	t.Run("expired invite", func(t *testing.T) {
		inviteID := createInvite(t, engine, ownerToken, projectID, gin.H{})

		past := time.Now().Add(-time.Hour)
		require.NoError(t, db.DB.Model(&models.Invite{}).Where("id = ?", inviteID).Update("expires_at", past).Error)

		recorder := joinInvite(t, engine, joinerToken, inviteID)
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var response struct {
			Error string `json:"error"`
		}
		decodeBody(t, recorder, &response)
		assert.Equal(t, "Invite has expired", response.Error)
	})
}

func TestManageInvites(t *testing.T) {
	engine := setupAPI(t)
	ownerToken := registerUser(t, engine, "owner")
	memberToken := registerUser(t, engine, "member")

	projectID := createProject(t, engine, ownerToken, "Apollo")
	inviteID := createInvite(t, engine, ownerToken, projectID, gin.H{})

	joinRecorder := joinInvite(t, engine, memberToken, inviteID)
	require.Equal(t, http.StatusOK, joinRecorder.Code)

	t.Run("listing is owner only", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/projects/%d/invites", projectID), memberToken, nil)
		assert.Equal(t, http.StatusForbidden, recorder.Code)

		recorder = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/projects/%d/invites", projectID), ownerToken, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var invites []struct {
			ID uint `json:"id"`
		}
		decodeBody(t, recorder, &invites)
		require.Len(t, invites, 1)
		assert.Equal(t, inviteID, invites[0].ID)
	})

	t.Run("member cannot update", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodPatch, fmt.Sprintf("/api/invites/%d", inviteID), memberToken, gin.H{
			"max_usage": 10,
		})
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("owner updates cap", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodPatch, fmt.Sprintf("/api/invites/%d", inviteID), ownerToken, gin.H{
			"max_usage": 10,
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			MaxUsage *int `json:"max_usage"`
		}
		decodeBody(t, recorder, &response)
		require.NotNil(t, response.MaxUsage)
		assert.Equal(t, 10, *response.MaxUsage)
	})

	t.Run("owner deletes", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/api/invites/%d", inviteID), ownerToken, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		getRecorder := doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/invites/%d", inviteID), "", nil)
		assert.Equal(t, http.StatusNotFound, getRecorder.Code)
	})
}
