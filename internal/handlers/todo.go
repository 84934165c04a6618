package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/access"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/realtime"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateTodoRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"due_date"`
	ProjectID      uint       `json:"project_id" binding:"required"`
	AssignedUserID *uint      `json:"assigned_user_id"`
}

type UpdateTodoRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Status         *string    `json:"status"`
	Priority       *string    `json:"priority"`
	DueDate        *time.Time `json:"due_date"`
	AssignedUserID *uint      `json:"assigned_user_id"`
}

type TodoResponse struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority,omitempty"`
	DueDate          *time.Time `json:"due_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	FinishedAt       *time.Time `json:"finished_at"`
	AuthorID         uint       `json:"user_id"`
	AssignedUserID   *uint      `json:"assigned_user_id"`
	ProjectID        uint       `json:"project_id"`
	Username         string     `json:"username,omitempty"`
	AvatarID         int        `json:"avatar_id,omitempty"`
	AssigneeUsername string     `json:"assignee_username,omitempty"`
	AssigneeAvatarID int        `json:"assignee_avatar_id,omitempty"`
}

type TodoListResponse struct {
	Todos []TodoResponse `json:"todos"`
}

func todoResponse(todo *models.Todo) TodoResponse {
	response := TodoResponse{
		ID:             todo.ID,
		Title:          todo.Title,
		Description:    todo.Description,
		Status:         string(todo.Status),
		Priority:       string(todo.Priority),
		DueDate:        todo.DueDate,
		CreatedAt:      todo.CreatedAt,
		UpdatedAt:      todo.UpdatedAt,
		FinishedAt:     todo.FinishedAt,
		AuthorID:       todo.AuthorID,
		AssignedUserID: todo.AssignedUserID,
		ProjectID:      todo.ProjectID,
	}

	if todo.Author.ID != 0 {
		response.Username = todo.Author.Username
		response.AvatarID = todo.Author.AvatarID
	}

	if todo.Assignee != nil {
		response.AssigneeUsername = todo.Assignee.Username
		response.AssigneeAvatarID = todo.Assignee.AvatarID
	}

	return response
}

func todoPayload(todo *models.Todo) realtime.TodoPayload {
	return realtime.TodoPayload{
		ID:             todo.ID,
		Title:          todo.Title,
		Description:    todo.Description,
		Status:         string(todo.Status),
		Priority:       string(todo.Priority),
		DueDate:        todo.DueDate,
		CreatedAt:      todo.CreatedAt,
		UpdatedAt:      todo.UpdatedAt,
		FinishedAt:     todo.FinishedAt,
		AuthorID:       todo.AuthorID,
		AssignedUserID: todo.AssignedUserID,
		ProjectID:      todo.ProjectID,
	}
}

func ListTodos(ctx *gin.Context) {
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

	project, _, err := access.ResolveProjectMember(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Project")
		return
	}

	var todos []models.Todo

	if err := db.DB.Preload("Author").Preload("Assignee").
		Where("project_id = ?", project.ID).
		Order("created_at ASC").
		Find(&todos).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}

	response := TodoListResponse{Todos: make([]TodoResponse, 0, len(todos))}

	for i := range todos {
		response.Todos = append(response.Todos, todoResponse(&todos[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateTodo(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateTodoRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Priority != "" && !models.ValidTodoPriority(models.TodoPriority(body.Priority)) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	project, _, err := access.ResolveProjectMember(db.DB, body.ProjectID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Project")
		return
	}

	todo := models.Todo{
		Title:          body.Title,
		Description:    body.Description,
		Status:         models.TodoStatusTodo,
		Priority:       models.TodoPriority(body.Priority),
		DueDate:        body.DueDate,
		AuthorID:       currentUser.ID,
		AssignedUserID: body.AssignedUserID,
		ProjectID:      project.ID,
	}

	if err := db.DB.Create(&todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create todo"})
		return
	}

	notifier.PushToProject(db.DB, project.ID, realtime.NewTodoCreatedEvent(todoPayload(&todo)))

	ctx.JSON(http.StatusCreated, todoResponse(&todo))
}

func UpdateTodo(ctx *gin.Context) {
	todoID, err := utils.GetTodoID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateTodoRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	todo, err := access.ResolveTodoPermission(db.DB, todoID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Todo")
		return
	}

	if body.Title != nil {
		todo.Title = *body.Title
	}

	if body.Description != nil {
		todo.Description = *body.Description
	}

	if body.Status != nil {
		status := models.TodoStatus(*body.Status)

		if !models.ValidTodoStatus(status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}

		todo.SetStatus(status)
	}

	if body.Priority != nil {
		priority := models.TodoPriority(*body.Priority)

		if *body.Priority != "" && !models.ValidTodoPriority(priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}

		todo.Priority = priority
	}

	if body.DueDate != nil {
		todo.DueDate = body.DueDate
	}

	if body.AssignedUserID != nil {
		todo.AssignedUserID = body.AssignedUserID
	}

	if err := db.DB.Save(todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
		return
	}

	notifier.PushToProject(db.DB, todo.ProjectID, realtime.NewTodoUpdatedEvent(todoPayload(todo)))

	ctx.JSON(http.StatusOK, todoResponse(todo))
}

func DeleteTodo(ctx *gin.Context) {
	todoID, err := utils.GetTodoID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	todo, err := access.ResolveTodoPermission(db.DB, todoID, currentUser.ID)

	if err != nil {
		respondAccessError(ctx, err, "Todo")
		return
	}

	if err := db.DB.Delete(todo).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}

	notifier.PushToProject(db.DB, todo.ProjectID, realtime.NewTodoDeletedEvent(todo.ID, todo.ProjectID))

	ctx.Status(http.StatusNoContent)
}
