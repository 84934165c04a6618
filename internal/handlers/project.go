package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/access"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type DeleteProjectRequest struct {
	TOTPCode string `json:"totp_code"`
}

type ProjectResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsOwner     bool                 `json:"is_owner"`
	TeamMembers []TeamMemberResponse `json:"team_members"`
}

type ProjectListResponse struct {
	MyProjects      []ProjectResponse `json:"my_projects"`
	InvitedProjects []ProjectResponse `json:"invited_projects"`
	UnreadCount     int64             `json:"unread_notifications_count"`
}

type ProjectSortingRequest struct {
	ProjectIDs []uint `json:"project_ids" binding:"required"`
}

type ProjectStatistic struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	TeamMembers []TeamMemberResponse `json:"team_members"`
	OpenTasks   int64                `json:"open_tasks"`
	TotalTasks  int64                `json:"total_tasks"`
	Percentage  float64              `json:"percentage"`
}

type ProjectStatisticsResponse struct {
	MyProjects      []ProjectStatistic `json:"my_projects"`
	InvitedProjects []ProjectStatistic `json:"invited_projects"`
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project := models.Project{
		Name:        body.Name,
		Description: body.Description,
		OwnerID:     currentUser.ID,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	ctx.JSON(http.StatusCreated, ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		IsOwner:     true,
		TeamMembers: []TeamMemberResponse{{
			ID:       currentUser.ID,
			Username: "You",
			AvatarID: currentUser.AvatarID,
		}},
	})
}

// userProjects returns every project the user owns or is a team member of.
func userProjects(gdb *gorm.DB, userID uint) ([]models.Project, error) {
	memberProjectIDs := gdb.Model(&models.TeamMembership{}).
		Select("project_id").
		Where("user_id = ?", userID)

	var projects []models.Project

	err := gdb.Where("owner_id = ? OR id IN (?)", userID, memberProjectIDs).
		Find(&projects).Error

	return projects, err
}

// applySorting reorders projects per the user's stored preference; projects
// missing from the stored order keep their query order at the end.
func applySorting(gdb *gorm.DB, userID uint, projects []models.Project) []models.Project {
	var record models.ProjectSorting

	if err := gdb.Where("user_id = ?", userID).First(&record).Error; err != nil {
		return projects
	}

	var order []uint

	if err := json.Unmarshal(record.Sorting, &order); err != nil {
		return projects
	}

	byID := make(map[uint]models.Project, len(projects))

	for _, project := range projects {
		byID[project.ID] = project
	}

	sorted := make([]models.Project, 0, len(projects))

	for _, id := range order {
		if project, ok := byID[id]; ok {
			sorted = append(sorted, project)
			delete(byID, id)
		}
	}

	for _, project := range projects {
		if _, ok := byID[project.ID]; ok {
			sorted = append(sorted, project)
		}
	}

	return sorted
}

func ListProjects(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := userProjects(db.DB, currentUser.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	projects = applySorting(db.DB, currentUser.ID, projects)

	response := ProjectListResponse{
		MyProjects:      []ProjectResponse{},
		InvitedProjects: []ProjectResponse{},
	}

	for _, project := range projects {
		members, err := teamMembersResponse(db.DB, &project, currentUser.ID)

		if err != nil {
			log.Printf("Failed to build team members for project %d: %v", project.ID, err)
			continue
		}

		isOwner := project.OwnerID == currentUser.ID

		entry := ProjectResponse{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
			IsOwner:     isOwner,
			TeamMembers: members,
		}

		if isOwner {
			response.MyProjects = append(response.MyProjects, entry)
		} else {
			response.InvitedProjects = append(response.InvitedProjects, entry)
		}
	}

	unread, err := notifier.UnreadCount(db.DB, currentUser.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	response.UnreadCount = unread

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
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

	members, err := teamMembersResponse(db.DB, project, currentUser.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	ctx.JSON(http.StatusOK, ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		IsOwner:     isOwner,
		TeamMembers: members,
	})
}

func UpdateProject(ctx *gin.Context) {
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

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := access.ResolveProjectOwner(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Project")
		return
	}

	project.Name = body.Name
	project.Description = body.Description

	if err := db.DB.Save(project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	members, err := teamMembersResponse(db.DB, project, currentUser.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	ctx.JSON(http.StatusOK, ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		IsOwner:     true,
		TeamMembers: members,
	})
}

// DeleteProject removes the project and everything scoped to it. Owners with
// 2FA enabled must present a valid TOTP code.
func DeleteProject(ctx *gin.Context) {
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

	if currentUser.TwoFAEnabled {
		var body DeleteProjectRequest

		if err := ctx.BindJSON(&body); err != nil || body.TOTPCode == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "TOTP code is required for 2FA enabled users"})
			return
		}

		var user models.User

		if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if !auth.ValidateTOTP(body.TOTPCode, user.TwoFASecret) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
			return
		}
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.TeamMembership{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Todo{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Invite{}).Error; err != nil {
			return err
		}

		notificationIDs := tx.Model(&models.Notification{}).
			Select("id").
			Where("project_id = ?", project.ID)

		if err := tx.Where("notification_id IN (?)", notificationIDs).Delete(&models.NotificationRead{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		return tx.Delete(project).Error
	})

	if err != nil {
		log.Printf("Failed to delete project %d: %v", project.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

func UpdateProjectSorting(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ProjectSortingRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	encoded, err := json.Marshal(body.ProjectIDs)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var record models.ProjectSorting

	err = db.DB.Where("user_id = ?", currentUser.ID).First(&record).Error

	if err == nil {
		record.Sorting = datatypes.JSON(encoded)
		err = db.DB.Save(&record).Error
	} else {
		record = models.ProjectSorting{
			UserID:  currentUser.ID,
			Sorting: datatypes.JSON(encoded),
		}
		err = db.DB.Create(&record).Error
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sorting"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"project_ids": body.ProjectIDs})
}

func GetProjectStatistics(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := userProjects(db.DB, currentUser.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := ProjectStatisticsResponse{
		MyProjects:      []ProjectStatistic{},
		InvitedProjects: []ProjectStatistic{},
	}

	for _, project := range projects {
		var total, done int64

		db.DB.Model(&models.Todo{}).Where("project_id = ?", project.ID).Count(&total)
		db.DB.Model(&models.Todo{}).
			Where("project_id = ? AND status = ?", project.ID, models.TodoStatusDone).
			Count(&done)

		percentage := 0.0

		if total > 0 {
			percentage = float64(done) / float64(total) * 100
		}

		members, err := teamMembersResponse(db.DB, &project, currentUser.ID)

		if err != nil {
			continue
		}

		entry := ProjectStatistic{
			ID:          project.ID,
			Name:        project.Name,
			TeamMembers: members,
			OpenTasks:   total - done,
			TotalTasks:  total,
			Percentage:  percentage,
		}

		if project.OwnerID == currentUser.ID {
			response.MyProjects = append(response.MyProjects, entry)
		} else {
			response.InvitedProjects = append(response.InvitedProjects, entry)
		}
	}

	ctx.JSON(http.StatusOK, response)
}
