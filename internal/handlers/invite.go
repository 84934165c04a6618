package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/access"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/realtime"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/gorm"
)

type CreateInviteRequest struct {
	Duration *string `json:"duration"`
	MaxUsage *int    `json:"max_usage"`
}

type UpdateInviteRequest struct {
	Duration *string `json:"duration"`
	MaxUsage *int    `json:"max_usage"`
	Active   *bool   `json:"active"`
}

type InviteResponse struct {
	ID                    uint       `json:"id"`
	ProjectID             uint       `json:"project_id"`
	ExpiresAt             *time.Time `json:"expires_at"`
	MaxUsage              *int       `json:"max_usage"`
	UsageCount            int        `json:"usage_count"`
	Active                bool       `json:"active"`
	ProjectName           string     `json:"project_name"`
	InviteCreatorUsername string     `json:"invite_creator_username"`
	InviteCreatorAvatarID int        `json:"invite_creator_avatar_id"`
}

var errInviteUsageLimit = errors.New("invite usage limit reached")

// parseDuration turns "12h" or "7d" into an absolute expiry timestamp.
func parseDuration(duration string, now time.Time) (time.Time, error) {
	var unit time.Duration

	switch {
	case strings.HasSuffix(duration, "h"):
		unit = time.Hour
	case strings.HasSuffix(duration, "d"):
		unit = 24 * time.Hour
	default:
		return time.Time{}, errors.New("Invalid duration format")
	}

	amount, err := strconv.Atoi(duration[:len(duration)-1])

	if err != nil {
		return time.Time{}, errors.New("Invalid duration format")
	}

	return now.Add(time.Duration(amount) * unit), nil
}

func inviteResponse(invite *models.Invite, project *models.Project, creator *models.User) InviteResponse {
	return InviteResponse{
		ID:                    invite.ID,
		ProjectID:             invite.ProjectID,
		ExpiresAt:             invite.ExpiresAt,
		MaxUsage:              invite.MaxUsage,
		UsageCount:            invite.UsageCount,
		Active:                invite.Active,
		ProjectName:           project.Name,
		InviteCreatorUsername: creator.Username,
		InviteCreatorAvatarID: creator.AvatarID,
	}
}

func CreateInvite(ctx *gin.Context) {
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

	var body CreateInviteRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := access.ResolveProjectOwner(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Project")
		return
	}

	var expiresAt *time.Time

	if body.Duration != nil {
		expiry, err := parseDuration(*body.Duration, time.Now())

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		expiresAt = &expiry
	}

	if body.MaxUsage != nil && *body.MaxUsage <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "max_usage must be a positive integer"})
		return
	}

	invite := models.Invite{
		ProjectID:  project.ID,
		ExpiresAt:  expiresAt,
		MaxUsage:   body.MaxUsage,
		UsageCount: 0,
		Active:     true,
	}

	if err := db.DB.Create(&invite).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invite"})
		return
	}

	var creator models.User

	if err := db.DB.First(&creator, project.OwnerID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invite"})
		return
	}

	ctx.JSON(http.StatusCreated, inviteResponse(&invite, project, &creator))
}

// GetInvite is the public invite preview shown before joining; it needs no
// session.
func GetInvite(ctx *gin.Context) {
	inviteID, err := utils.GetInviteID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var invite models.Invite

	if err := db.DB.First(&invite, inviteID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, invite.ProjectID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var creator models.User

	if err := db.DB.First(&creator, project.OwnerID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invite"})
		return
	}

	ctx.JSON(http.StatusOK, inviteResponse(&invite, &project, &creator))
}

// JoinInvite redeems an invite: validates it, inserts the membership, and
// bumps the usage counter, all in one transaction. The counter update is
// guarded so concurrent joins can never push usage past the cap.
func JoinInvite(ctx *gin.Context) {
	inviteID, err := utils.GetInviteID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var project models.Project

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var invite models.Invite

		if err := tx.First(&invite, inviteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.ErrNotFound
			}
			return err
		}

		switch {
		case !invite.Active:
			return errors.New("Invite is not active")
		case invite.Expired(time.Now()):
			return errors.New("Invite has expired")
		case invite.UsageExhausted():
			return errInviteUsageLimit
		}

		if err := tx.First(&project, invite.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.ErrNotFound
			}
			return err
		}

		if project.OwnerID == currentUser.ID {
			return errors.New("User is already a team member")
		}

		var existing int64

		if err := tx.Model(&models.TeamMembership{}).
			Where("project_id = ? AND user_id = ?", project.ID, currentUser.ID).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing > 0 {
			return errors.New("User is already a team member")
		}

		membership := models.TeamMembership{
			ProjectID: project.ID,
			UserID:    currentUser.ID,
		}

		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Invite{}).
			Where("id = ? AND (max_usage IS NULL OR usage_count < max_usage)", invite.ID).
			Update("usage_count", gorm.Expr("usage_count + 1"))

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return errInviteUsageLimit
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, access.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
		} else {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": capitalizeError(err)})
		}
		return
	}

	notifier.NotifyProject(db.DB, project.ID,
		"User Joined Project",
		fmt.Sprintf("User %s has joined the project %s.", currentUser.Username, project.Name))

	notifier.PushToProject(db.DB, project.ID, realtime.NewMemberJoinedEvent(
		project.ID,
		project.Name,
		realtime.MemberPayload{
			ID:       currentUser.ID,
			Username: currentUser.Username,
			AvatarID: currentUser.AvatarID,
		},
	), currentUser.ID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Joined project successfully"})
}

func capitalizeError(err error) string {
	msg := err.Error()

	if msg == "" {
		return msg
	}

	return strings.ToUpper(msg[:1]) + msg[1:]
}

func UpdateInvite(ctx *gin.Context) {
	inviteID, err := utils.GetInviteID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateInviteRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	invite, err := access.ResolveInviteOwner(db.DB, inviteID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Invite")
		return
	}

	if body.Duration != nil {
		expiry, err := parseDuration(*body.Duration, time.Now())

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		invite.ExpiresAt = &expiry
	}

	if body.MaxUsage != nil {
		if *body.MaxUsage <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "max_usage must be a positive integer"})
			return
		}

		invite.MaxUsage = body.MaxUsage
	}

	if body.Active != nil {
		invite.Active = *body.Active
	}

	if err := db.DB.Save(invite).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invite"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, invite.ProjectID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invite"})
		return
	}

	var creator models.User

	if err := db.DB.First(&creator, project.OwnerID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invite"})
		return
	}

	ctx.JSON(http.StatusOK, inviteResponse(invite, &project, &creator))
}

func DeleteInvite(ctx *gin.Context) {
	inviteID, err := utils.GetInviteID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	invite, err := access.ResolveInviteOwner(db.DB, inviteID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Invite")
		return
	}

	if err := db.DB.Delete(invite).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete invite"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Invite deleted successfully"})
}

func ListProjectInvites(ctx *gin.Context) {
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

	project, err := access.ResolveProjectOwner(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Project")
		return
	}

	var creator models.User

	if err := db.DB.First(&creator, project.OwnerID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invites"})
		return
	}

	var invites []models.Invite

	if err := db.DB.Where("project_id = ?", project.ID).Find(&invites).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invites"})
		return
	}

	response := make([]InviteResponse, 0, len(invites))

	for i := range invites {
		response = append(response, inviteResponse(&invites[i], project, &creator))
	}

	ctx.JSON(http.StatusOK, response)
}
