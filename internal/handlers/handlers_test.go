package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/router"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupAPI wires a fresh in-memory database into the global handle and
// returns the fully routed engine.
func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	t.Setenv("JWT_SECRET", "handler-test-secret")
	require.NoError(t, auth.InitJWTSecret())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.TeamMembership{},
		&models.Todo{},
		&models.Invite{},
		&models.Notification{},
		&models.NotificationRead{},
		&models.ProjectSorting{},
	))

	db.DB = gdb

	return router.NewRouter()
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

// registerUser creates an account through the public endpoint and returns its
// access token.
func registerUser(t *testing.T, engine *gin.Engine, username string) string {
	t.Helper()

	recorder := doJSON(t, engine, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, recorder, &response)
	require.NotEmpty(t, response.AccessToken)

	return response.AccessToken
}

func createProject(t *testing.T, engine *gin.Engine, token, name string) uint {
	t.Helper()

	recorder := doJSON(t, engine, http.MethodPost, "/api/projects", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response struct {
		ID uint `json:"id"`
	}
	decodeBody(t, recorder, &response)

	return response.ID
}

func createInvite(t *testing.T, engine *gin.Engine, token string, projectID uint, body gin.H) uint {
	t.Helper()

	recorder := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/projects/%d/invites", projectID), token, body)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response struct {
		ID uint `json:"id"`
	}
	decodeBody(t, recorder, &response)

	return response.ID
}

func joinInvite(t *testing.T, engine *gin.Engine, token string, inviteID uint) *httptest.ResponseRecorder {
	t.Helper()

	return doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/invites/%d/join", inviteID), token, gin.H{})
}
