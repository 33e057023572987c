package api

import (
	"time"

	"github.com/nhle/todocal/internal/model"
)

// todoResponse is a todo with its derived fields filled in.
type todoResponse struct {
	ID              string           `json:"id"`
	ParentID        *string          `json:"parentId"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Completed       bool             `json:"completed"`
	DueDate         *model.Date      `json:"dueDate"`
	DueTime         *model.TimeOfDay `json:"dueTime"`
	Priority        model.Priority   `json:"priority"`
	DisplayOrder    int              `json:"displayOrder"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Overdue         bool             `json:"overdue"`
	SubtaskProgress int              `json:"subtaskProgress"`
	Tags            []model.Tag      `json:"tags"`
	Subtasks        []todoResponse   `json:"subtasks"`
}

func newTodoResponse(t model.Todo, now time.Time) todoResponse {
	resp := todoResponse{
		ID:              t.ID,
		ParentID:        t.ParentID,
		Title:           t.Title,
		Description:     t.Description,
		Completed:       t.Completed,
		DueDate:         t.DueDate,
		DueTime:         t.DueTime,
		Priority:        t.Priority,
		DisplayOrder:    t.DisplayOrder,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Overdue:         t.IsOverdue(now),
		SubtaskProgress: t.SubtaskProgress(),
		Tags:            t.Tags,
		Subtasks:        newTodoResponses(t.Subtasks, now),
	}
	if resp.Tags == nil {
		resp.Tags = []model.Tag{}
	}
	return resp
}

func newTodoResponses(todos []model.Todo, now time.Time) []todoResponse {
	out := make([]todoResponse, len(todos))
	for i, t := range todos {
		out[i] = newTodoResponse(t, now)
	}
	return out
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
