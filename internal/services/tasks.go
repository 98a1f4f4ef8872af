package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound covers both unknown ids and tasks owned by another
	// user. The two cases are indistinguishable to the caller so that task
	// ids do not leak across accounts.
	ErrTaskNotFound = errors.New("task not found")
	ErrPageNotFound = errors.New("page not found")
)

// Actor is the authenticated identity a request acts as.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

type TaskInput struct {
	Title       string
	Description string
	Completed   bool
}

// TaskPatch carries a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

type TaskFilter struct {
	Completed     *bool
	Title         string
	Search        string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Ordering      string
}

type TaskPage struct {
	Tasks       []models.Task `json:"tasks"`
	Total       int64         `json:"total"`
	Page        int           `json:"page"`
	PageSize    int           `json:"page_size"`
	HasNext     bool          `json:"has_next"`
	HasPrevious bool          `json:"has_previous"`
}

type TaskStats struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	Pending        int64   `json:"pending"`
	CompletionRate float64 `json:"completion_rate"`
}

type TaskService interface {
	CreateTask(db *gorm.DB, actor Actor, input TaskInput) (models.Task, error)
	GetTaskByID(db *gorm.DB, actor Actor, id uuid.UUID) (models.Task, error)
	ListTasks(db *gorm.DB, actor Actor, filter TaskFilter, page int) (TaskPage, error)
	UpdateTask(db *gorm.DB, actor Actor, id uuid.UUID, patch TaskPatch) (models.Task, error)
	DeleteTask(db *gorm.DB, actor Actor, id uuid.UUID) error
	GetTaskStats(db *gorm.DB, actor Actor) (TaskStats, error)
}

type TaskServiceImpl struct {
	pageSize int
}

func NewTaskService(pageSize int) *TaskServiceImpl {
	return &TaskServiceImpl{pageSize: pageSize}
}

// taskScope is the single ownership predicate every task-access path goes
// through: admins see all tasks, everyone else only their own.
func taskScope(actor Actor) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if actor.IsAdmin() {
			return tx
		}
		return tx.Where("user_id = ?", actor.ID)
	}
}

// scope applies every given filter as a conjunctive predicate. Search is a
// disjunction over title and description, ANDed with the rest.
func (f TaskFilter) scope() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if f.Completed != nil {
			tx = tx.Where("completed = ?", *f.Completed)
		}
		if f.Title != "" {
			tx = tx.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(f.Title)+"%")
		}
		if f.CreatedAfter != nil {
			tx = tx.Where("created_at >= ?", *f.CreatedAfter)
		}
		if f.CreatedBefore != nil {
			// Inclusive of the whole end day.
			tx = tx.Where("created_at < ?", f.CreatedBefore.AddDate(0, 0, 1))
		}
		if f.Search != "" {
			term := "%" + strings.ToLower(f.Search) + "%"
			tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
		}
		return tx
	}
}

var orderingColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
}

const defaultOrder = "created_at DESC, id ASC"

// orderClause maps a requested ordering field to a SQL ORDER BY clause.
// Unknown fields fall back to the default ordering rather than failing.
// The id tiebreak keeps page boundaries deterministic.
func orderClause(ordering string) string {
	direction := "ASC"
	field := ordering
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(ordering, "-")
	}

	column, ok := orderingColumns[field]
	if !ok {
		return defaultOrder
	}
	return column + " " + direction + ", id ASC"
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, actor Actor, input TaskInput) (models.Task, error) {
	taskID, err := uuid.NewV4()
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ID:          taskID,
		UserID:      actor.ID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
	}
	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, actor Actor, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Scopes(taskScope(actor)).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, actor Actor, filter TaskFilter, page int) (TaskPage, error) {
	if page < 1 {
		return TaskPage{}, ErrPageNotFound
	}

	var total int64
	err := db.Model(&models.Task{}).Scopes(taskScope(actor), filter.scope()).Count(&total).Error
	if err != nil {
		return TaskPage{}, err
	}

	lastPage := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	if lastPage == 0 {
		lastPage = 1
	}
	if page > lastPage {
		return TaskPage{}, ErrPageNotFound
	}

	tasks := make([]models.Task, 0, s.pageSize)
	err = db.Scopes(taskScope(actor), filter.scope()).
		Order(orderClause(filter.Ordering)).
		Offset((page - 1) * s.pageSize).
		Limit(s.pageSize).
		Find(&tasks).Error
	if err != nil {
		return TaskPage{}, err
	}

	return TaskPage{
		Tasks:       tasks,
		Total:       total,
		Page:        page,
		PageSize:    s.pageSize,
		HasNext:     page < lastPage,
		HasPrevious: page > 1,
	}, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, actor Actor, id uuid.UUID, patch TaskPatch) (models.Task, error) {
	task, err := s.GetTaskByID(db, actor, id)
	if err != nil {
		return models.Task{}, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}
	if len(updates) == 0 {
		return task, nil
	}

	if err := db.Model(&task).Updates(updates).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, actor Actor, id uuid.UUID) error {
	result := db.Scopes(taskScope(actor)).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// GetTaskStats aggregates over the full ownership scope; list filters never
// narrow it.
func (s *TaskServiceImpl) GetTaskStats(db *gorm.DB, actor Actor) (TaskStats, error) {
	var total, completed int64

	err := db.Model(&models.Task{}).Scopes(taskScope(actor)).Count(&total).Error
	if err != nil {
		return TaskStats{}, err
	}

	err = db.Model(&models.Task{}).Scopes(taskScope(actor)).Where("completed = ?", true).Count(&completed).Error
	if err != nil {
		return TaskStats{}, err
	}

	stats := TaskStats{
		Total:     total,
		Completed: completed,
		Pending:   total - completed,
	}
	if total > 0 {
		stats.CompletionRate = math.Round(float64(completed)/float64(total)*1000) / 10
	}
	return stats, nil
}
