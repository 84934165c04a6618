// Package access resolves a caller identity and a requested resource into an
// access decision. Every mutating handler runs one of these checks before
// touching persisted state; a failed check therefore leaves no side effects.
package access

import (
	"errors"

	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the resource id has no matching row.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden means the caller lacks the required relationship to the
	// resource. NotFound is always checked first so callers can distinguish
	// "doesn't exist" from "not allowed".
	ErrForbidden = errors.New("access forbidden")
)

// ResolveProjectMember returns the project when the caller is its owner or a
// team member, along with an is_owner flag. The flag is computed only after
// the project is known to exist.
func ResolveProjectMember(db *gorm.DB, projectID, callerID uint) (*models.Project, bool, error) {
	project, err := findProject(db, projectID)

	if err != nil {
		return nil, false, err
	}

	if project.OwnerID == callerID {
		return project, true, nil
	}

	member, err := isTeamMember(db, projectID, callerID)

	if err != nil {
		return nil, false, err
	}

	if !member {
		return nil, false, ErrForbidden
	}

	return project, false, nil
}

// ResolveProjectOwner returns the project only when the caller is exactly its
// owner.
func ResolveProjectOwner(db *gorm.DB, projectID, callerID uint) (*models.Project, error) {
	project, err := findProject(db, projectID)

	if err != nil {
		return nil, err
	}

	if project.OwnerID != callerID {
		return nil, ErrForbidden
	}

	return project, nil
}

// ResolveInviteOwner resolves the invite through its parent project and
// requires the caller to be that project's owner.
func ResolveInviteOwner(db *gorm.DB, inviteID, callerID uint) (*models.Invite, error) {
	var invite models.Invite

	if err := db.First(&invite, inviteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := ResolveProjectOwner(db, invite.ProjectID, callerID); err != nil {
		return nil, err
	}

	return &invite, nil
}

// ResolveTodoPermission returns the todo when the caller is the owner or a
// team member of its parent project. Being assigned to the todo does not by
// itself grant permission; membership does.
func ResolveTodoPermission(db *gorm.DB, todoID, callerID uint) (*models.Todo, error) {
	var todo models.Todo

	if err := db.First(&todo, todoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, _, err := ResolveProjectMember(db, todo.ProjectID, callerID); err != nil {
		return nil, err
	}

	return &todo, nil
}

func findProject(db *gorm.DB, projectID uint) (*models.Project, error) {
	var project models.Project

	if err := db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &project, nil
}

func isTeamMember(db *gorm.DB, projectID, userID uint) (bool, error) {
	var count int64

	err := db.Model(&models.TeamMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
