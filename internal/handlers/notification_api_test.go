package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationBody struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	ProjectID *uint  `json:"project_id"`
	Read      bool   `json:"read"`
}

// seedTeam builds a project with one member and returns both tokens; the join
// produces one stored notification for each of them.
func seedTeam(t *testing.T, engine *gin.Engine) (ownerToken, memberToken string, projectID uint) {
	t.Helper()

	ownerToken = registerUser(t, engine, "owner")
	memberToken = registerUser(t, engine, "member")

	projectID = createProject(t, engine, ownerToken, "Apollo")
	inviteID := createInvite(t, engine, ownerToken, projectID, gin.H{})

	recorder := joinInvite(t, engine, memberToken, inviteID)
	require.Equal(t, http.StatusOK, recorder.Code)

	return ownerToken, memberToken, projectID
}

func listNotifications(t *testing.T, engine *gin.Engine, token string) []notificationBody {
	t.Helper()

	recorder := doJSON(t, engine, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response []notificationBody
	decodeBody(t, recorder, &response)

	return response
}

func TestListNotifications(t *testing.T) {
	engine := setupAPI(t)
	ownerToken, memberToken, projectID := seedTeam(t, engine)

	ownerList := listNotifications(t, engine, ownerToken)
	require.Len(t, ownerList, 1)
	assert.Equal(t, "User Joined Project", ownerList[0].Title)
	assert.False(t, ownerList[0].Read)
	require.NotNil(t, ownerList[0].ProjectID)
	assert.Equal(t, projectID, *ownerList[0].ProjectID)

	memberList := listNotifications(t, engine, memberToken)
	require.Len(t, memberList, 1)

	t.Run("others see nothing", func(t *testing.T) {
		strangerToken := registerUser(t, engine, "stranger")
		assert.Empty(t, listNotifications(t, engine, strangerToken))
	})
}

func TestMarkNotificationRead(t *testing.T) {
	engine := setupAPI(t)
	ownerToken, _, _ := seedTeam(t, engine)

	list := listNotifications(t, engine, ownerToken)
	require.Len(t, list, 1)

	path := fmt.Sprintf("/api/notifications/%d/read", list[0].ID)

	recorder := doJSON(t, engine, http.MethodPost, path, ownerToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		UnreadCount int64 `json:"unread_notifications_count"`
	}
	decodeBody(t, recorder, &response)
	assert.Zero(t, response.UnreadCount)

	assert.True(t, listNotifications(t, engine, ownerToken)[0].Read)

	t.Run("idempotent", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodPost, path, ownerToken, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("unknown notification", func(t *testing.T) {
		recorder := doJSON(t, engine, http.MethodPost, "/api/notifications/9999/read", ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestMarkAllNotificationsRead(t *testing.T) {
	engine := setupAPI(t)
	ownerToken, memberToken, projectID := seedTeam(t, engine)

	// A few more events on the pile.
	leave := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/projects/%d/leave", projectID), memberToken, gin.H{})
	require.Equal(t, http.StatusOK, leave.Code)

	recorder := doJSON(t, engine, http.MethodPost, "/api/notifications/read-all", ownerToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	for _, notification := range listNotifications(t, engine, ownerToken) {
		assert.True(t, notification.Read)
	}

	// The member's own unread state is untouched.
	memberList := listNotifications(t, engine, memberToken)
	require.NotEmpty(t, memberList)

	unreadFound := false

	for _, notification := range memberList {
		if !notification.Read {
			unreadFound = true
		}
	}

	assert.True(t, unreadFound)
}
