package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/access"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/realtime"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

// LeaveProject removes the caller's membership. The owner cannot leave their
// own project; ownership transfer is not a thing here.
func LeaveProject(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project, isOwner, err := access.ResolveProjectMember(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Project")
		return
	}

	if isOwner {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project owner cannot leave the project"})
		return
	}

	var membership models.TeamMembership

	if err := db.DB.Where("project_id = ? AND user_id = ?", project.ID, currentUser.ID).
		First(&membership).Error; err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "User is not a member of the project"})
		return
	}

	if err := db.DB.Delete(&membership).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave project"})
		return
	}

	// The membership row is gone, so the project notification reaches the
	// remaining members and owner only; the leaver gets a personal one.
	notifier.NotifyProject(db.DB, project.ID,
		"User Left Project",
		fmt.Sprintf("User %s has left the project %s.", currentUser.Username, project.Name))

	notifier.NotifyUser(db.DB, currentUser.ID,
		"Left Project Confirmation",
		fmt.Sprintf("You have successfully left the project %s.", project.Name))

	notifier.PushToProject(db.DB, project.ID, realtime.NewMemberLeftEvent(
		project.ID,
		project.Name,
		realtime.MemberPayload{
			ID:       currentUser.ID,
			Username: currentUser.Username,
			AvatarID: currentUser.AvatarID,
		},
	))

	ctx.JSON(http.StatusOK, gin.H{"message": "Left project successfully"})
}
