package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/service"
)

func (h *handlers) respondTodos(c *gin.Context, todos []model.Todo, err error) {
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newTodoResponses(todos, h.Queries.Now()))
}

func (h *handlers) respondTodo(c *gin.Context, status int, todo *model.Todo, err error) {
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(status, newTodoResponse(*todo, h.Queries.Now()))
}

func (h *handlers) listRoots(c *gin.Context) {
	todos, err := h.Queries.Roots(c.Request.Context(), currentUser(c))
	h.respondTodos(c, todos, err)
}

func (h *handlers) getTodo(c *gin.Context) {
	todo, err := h.Queries.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	h.respondTodo(c, http.StatusOK, todo, err)
}

func (h *handlers) listSubtasks(c *gin.Context) {
	todos, err := h.Queries.Subtasks(c.Request.Context(), currentUser(c), c.Param("id"))
	h.respondTodos(c, todos, err)
}

func (h *handlers) createTodo(c *gin.Context) {
	var in service.TodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	todo, err := h.Todos.Create(c.Request.Context(), currentUser(c), in)
	h.respondTodo(c, http.StatusCreated, todo, err)
}

func (h *handlers) updateTodo(c *gin.Context) {
	var in service.TodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	todo, err := h.Todos.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	h.respondTodo(c, http.StatusOK, todo, err)
}

func (h *handlers) toggleTodo(c *gin.Context) {
	todo, err := h.Todos.ToggleComplete(c.Request.Context(), currentUser(c), c.Param("id"))
	h.respondTodo(c, http.StatusOK, todo, err)
}

// updateDueDate takes ?dueDate=YYYY-MM-DD; an empty value clears it.
func (h *handlers) updateDueDate(c *gin.Context) {
	var dueDate *model.Date
	if raw := c.Query("dueDate"); raw != "" {
		d, ok := dateParam(c, "dueDate", raw)
		if !ok {
			return
		}
		dueDate = &d
	}
	todo, err := h.Todos.UpdateDueDate(c.Request.Context(), currentUser(c), c.Param("id"), dueDate)
	h.respondTodo(c, http.StatusOK, todo, err)
}

func (h *handlers) deleteTodo(c *gin.Context) {
	deleted, err := h.Todos.Delete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// reorderTodos takes a JSON array of todo ids in their new order.
func (h *handlers) reorderTodos(c *gin.Context) {
	var ids []string
	if err := c.ShouldBindJSON(&ids); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Todos.Reorder(c.Request.Context(), currentUser(c), ids); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *handlers) listByStatus(c *gin.Context) {
	completed, err := strconv.ParseBool(c.Param("completed"))
	if err != nil {
		respondError(c, h.Logger, &service.ValidationError{Field: "completed", Message: "must be true or false"})
		return
	}
	todos, err := h.Queries.ByStatus(c.Request.Context(), currentUser(c), completed)
	h.respondTodos(c, todos, err)
}

func (h *handlers) listByDate(c *gin.Context) {
	date, ok := dateParam(c, "date", c.Param("date"))
	if !ok {
		return
	}
	todos, err := h.Queries.ByDate(c.Request.Context(), currentUser(c), date)
	h.respondTodos(c, todos, err)
}

func (h *handlers) listWeek(c *gin.Context) {
	start, ok := dateParam(c, "start", c.Query("start"))
	if !ok {
		return
	}
	todos, err := h.Queries.Week(c.Request.Context(), currentUser(c), start)
	h.respondTodos(c, todos, err)
}

func (h *handlers) listMonth(c *gin.Context) {
	year, month, ok := yearMonthParams(c)
	if !ok {
		return
	}
	todos, err := h.Queries.Month(c.Request.Context(), currentUser(c), year, month)
	h.respondTodos(c, todos, err)
}

func (h *handlers) listRange(c *gin.Context) {
	start, ok := dateParam(c, "start", c.Query("start"))
	if !ok {
		return
	}
	end, ok := dateParam(c, "end", c.Query("end"))
	if !ok {
		return
	}
	todos, err := h.Queries.ByDateRange(c.Request.Context(), currentUser(c), start, end)
	h.respondTodos(c, todos, err)
}

func (h *handlers) listOverdue(c *gin.Context) {
	todos, err := h.Queries.Overdue(c.Request.Context(), currentUser(c))
	h.respondTodos(c, todos, err)
}

func (h *handlers) listWithoutDueDate(c *gin.Context) {
	todos, err := h.Queries.WithoutDueDate(c.Request.Context(), currentUser(c))
	h.respondTodos(c, todos, err)
}

func (h *handlers) listByTag(c *gin.Context) {
	todos, err := h.Queries.ByTag(c.Request.Context(), currentUser(c), c.Param("tagId"))
	h.respondTodos(c, todos, err)
}

func (h *handlers) calendarCounts(c *gin.Context) {
	year, month, ok := yearMonthParams(c)
	if !ok {
		return
	}
	counts, err := h.Queries.MonthCounts(c.Request.Context(), currentUser(c), year, month)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *handlers) statistics(c *gin.Context) {
	days := service.DefaultStatisticsDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, h.Logger, &service.ValidationError{Field: "days", Message: "must be a whole number"})
			return
		}
		days = n
	}
	stats, err := h.Queries.Statistics(c.Request.Context(), currentUser(c), days)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func dateParam(c *gin.Context, field, raw string) (model.Date, bool) {
	d, err := model.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("%s: %v", field, err)})
		return model.Date{}, false
	}
	return d, true
}

func yearMonthParams(c *gin.Context) (int, time.Month, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "year: must be a number"})
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "month: must be a number"})
		return 0, 0, false
	}
	return year, time.Month(month), true
}
