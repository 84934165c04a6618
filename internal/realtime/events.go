package realtime

import "time"

// Event names pushed to clients. Each has a fixed payload struct below;
// clients dispatch on the "event" field.
const (
	EventNotificationNew     = "notification.new"
	EventNotificationReadAll = "notification.read_all"
	EventTodoCreated         = "todo.created"
	EventTodoUpdated         = "todo.updated"
	EventTodoDeleted         = "todo.deleted"
	EventMemberJoined        = "team.member_joined"
	EventMemberLeft          = "team.member_left"
)

type NotificationPayload struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	ProjectID   *uint     `json:"project_id"`
}

type NotificationNewEvent struct {
	Event        string              `json:"event"`
	Notification NotificationPayload `json:"notification"`
}

func NewNotificationEvent(payload NotificationPayload) NotificationNewEvent {
	return NotificationNewEvent{Event: EventNotificationNew, Notification: payload}
}

type ReadAllEvent struct {
	Event       string `json:"event"`
	UnreadCount int64  `json:"unread_notifications_count"`
}

func NewReadAllEvent(unread int64) ReadAllEvent {
	return ReadAllEvent{Event: EventNotificationReadAll, UnreadCount: unread}
}

type TodoPayload struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority,omitempty"`
	DueDate        *time.Time `json:"due_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	FinishedAt     *time.Time `json:"finished_at"`
	AuthorID       uint       `json:"user_id"`
	AssignedUserID *uint      `json:"assigned_user_id"`
	ProjectID      uint       `json:"project_id"`
}

type TodoEvent struct {
	Event string      `json:"event"`
	Todo  TodoPayload `json:"todo"`
}

func NewTodoCreatedEvent(payload TodoPayload) TodoEvent {
	return TodoEvent{Event: EventTodoCreated, Todo: payload}
}

func NewTodoUpdatedEvent(payload TodoPayload) TodoEvent {
	return TodoEvent{Event: EventTodoUpdated, Todo: payload}
}

type TodoDeletedEvent struct {
	Event     string `json:"event"`
	TodoID    uint   `json:"todo_id"`
	ProjectID uint   `json:"project_id"`
}

func NewTodoDeletedEvent(todoID, projectID uint) TodoDeletedEvent {
	return TodoDeletedEvent{Event: EventTodoDeleted, TodoID: todoID, ProjectID: projectID}
}

type MemberPayload struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	AvatarID int    `json:"avatar_id"`
}

type MemberEvent struct {
	Event       string        `json:"event"`
	ProjectID   uint          `json:"project_id"`
	ProjectName string        `json:"project_name"`
	Member      MemberPayload `json:"member"`
}

func NewMemberJoinedEvent(projectID uint, projectName string, member MemberPayload) MemberEvent {
	return MemberEvent{Event: EventMemberJoined, ProjectID: projectID, ProjectName: projectName, Member: member}
}

func NewMemberLeftEvent(projectID uint, projectName string, member MemberPayload) MemberEvent {
	return MemberEvent{Event: EventMemberLeft, ProjectID: projectID, ProjectName: projectName, Member: member}
}
