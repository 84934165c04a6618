package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/access"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/notify"
	"github.com/taskhive-dev/taskhive/internal/realtime"
	"gorm.io/gorm"
)

// Shared realtime wiring for the handlers package.
var (
	hub      = realtime.NewHub()
	notifier = notify.NewDispatcher(hub)
)

type TeamMemberResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	AvatarID int    `json:"avatar_id"`
}

func respondAccessError(ctx *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, access.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
	case errors.Is(err, access.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this resource"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve " + resource})
	}
}

// teamMembersResponse lists the owner first, then the team members, showing
// "You" in place of the caller's own username.
func teamMembersResponse(db *gorm.DB, project *models.Project, currentUserID uint) ([]TeamMemberResponse, error) {
	var owner models.User

	if err := db.First(&owner, project.OwnerID).Error; err != nil {
		return nil, err
	}

	members := []TeamMemberResponse{memberEntry(owner, currentUserID)}

	var memberships []models.TeamMembership

	if err := db.Preload("User").Where("project_id = ?", project.ID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	for _, membership := range memberships {
		if membership.UserID == project.OwnerID {
			continue
		}
		members = append(members, memberEntry(membership.User, currentUserID))
	}

	return members, nil
}

func memberEntry(user models.User, currentUserID uint) TeamMemberResponse {
	username := user.Username

	if user.ID == currentUserID {
		username = "You"
	}

	return TeamMemberResponse{
		ID:       user.ID,
		Username: username,
		AvatarID: user.AvatarID,
	}
}
