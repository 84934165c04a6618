package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, server *httptest.Server, token string) (*websocket.Conn, error) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"

	if token != "" {
		url += "?token=" + token
	}

	header := http.Header{"Origin": []string{"http://localhost:3000"}}

	conn, _, err := websocket.DefaultDialer.Dial(url, header)

	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}

	return conn, err
}

func expectPolicyClose(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close frame, got %v", err)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	engine := setupAPI(t)
	server := httptest.NewServer(engine)
	defer server.Close()

	conn, err := dialWS(t, server, "")
	require.NoError(t, err)

	expectPolicyClose(t, conn)
}

func TestWebSocketRejectsInvalidToken(t *testing.T) {
	engine := setupAPI(t)
	server := httptest.NewServer(engine)
	defer server.Close()

	conn, err := dialWS(t, server, "not-a-real-token")
	require.NoError(t, err)

	expectPolicyClose(t, conn)
}

func TestWebSocketDeliversProjectEvents(t *testing.T) {
	engine := setupAPI(t)
	server := httptest.NewServer(engine)
	defer server.Close()

	ownerToken := registerUser(t, engine, "owner")
	joinerToken := registerUser(t, engine, "joiner")

	projectID := createProject(t, engine, ownerToken, "Apollo")
	inviteID := createInvite(t, engine, ownerToken, projectID, gin.H{})

	conn, err := dialWS(t, server, ownerToken)
	require.NoError(t, err)

	recorder := joinInvite(t, engine, joinerToken, inviteID)
	require.Equal(t, http.StatusOK, recorder.Code)

	// A join produces a stored notification push and a membership event; the
	// two arrive in no particular order.
	events := make(map[string]bool)

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		var payload struct {
			Event string `json:"event"`
		}
		require.NoError(t, conn.ReadJSON(&payload))
		events[payload.Event] = true
	}

	assert.True(t, events["notification.new"], "events seen: %v", events)
	assert.True(t, events["team.member_joined"], "events seen: %v", events)
}

func TestWebSocketMultiDevice(t *testing.T) {
	engine := setupAPI(t)
	server := httptest.NewServer(engine)
	defer server.Close()

	ownerToken := registerUser(t, engine, "owner")
	joinerToken := registerUser(t, engine, "joiner")

	projectID := createProject(t, engine, ownerToken, "Apollo")
	inviteID := createInvite(t, engine, ownerToken, projectID, gin.H{})

	phone, err := dialWS(t, server, ownerToken)
	require.NoError(t, err)

	laptop, err := dialWS(t, server, ownerToken)
	require.NoError(t, err)

	recorder := joinInvite(t, engine, joinerToken, inviteID)
	require.Equal(t, http.StatusOK, recorder.Code)

	for _, conn := range []*websocket.Conn{phone, laptop} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		var payload struct {
			Event string `json:"event"`
		}
		require.NoError(t, conn.ReadJSON(&payload))
		assert.NotEmpty(t, payload.Event)
	}
}
