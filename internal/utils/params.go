package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func getIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(name + " not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + name)
	}

	return uint(id), nil
}

func GetProjectID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "project_id")
}

func GetInviteID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "invite_id")
}

func GetTodoID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "todo_id")
}

func GetNotificationID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "notification_id")
}
