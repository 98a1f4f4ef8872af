package services

import (
	"fmt"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	taskCacheTTL  = 30 * time.Minute
	statsCacheTTL = 5 * time.Minute
)

// CachedTaskService decorates a TaskService with task-by-id and stats
// caching. List results are never cached; the filter space is too wide for
// useful hit rates and invalidation would have to wipe it wholesale anyway.
type CachedTaskService struct {
	taskService TaskService
	cache       cache.Cache
}

func NewCachedTaskService(taskService TaskService, cacheInstance cache.Cache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func taskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id.String())
}

func statsKey(actor Actor) string {
	if actor.IsAdmin() {
		return "task_stats:all"
	}
	return fmt.Sprintf("task_stats:%s", actor.ID.String())
}

func (s *CachedTaskService) invalidate(taskID, ownerID uuid.UUID) {
	s.cache.Delete(taskKey(taskID))
	s.cache.Delete("task_stats:all")
	s.cache.Delete(fmt.Sprintf("task_stats:%s", ownerID.String()))
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, actor Actor, input TaskInput) (models.Task, error) {
	task, err := s.taskService.CreateTask(db, actor, input)
	if err != nil {
		return task, err
	}

	s.invalidate(task.ID, task.UserID)
	s.cache.Set(taskKey(task.ID), task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, actor Actor, id uuid.UUID) (models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(taskKey(id), &cached); err == nil {
		// The cache is keyed by task id alone, so the ownership check from
		// taskScope has to be replayed on a hit.
		if cached.UserID != actor.ID && !actor.IsAdmin() {
			return models.Task{}, ErrTaskNotFound
		}
		return cached, nil
	}

	task, err := s.taskService.GetTaskByID(db, actor, id)
	if err != nil {
		return task, err
	}

	s.cache.Set(taskKey(id), task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, actor Actor, filter TaskFilter, page int) (TaskPage, error) {
	return s.taskService.ListTasks(db, actor, filter, page)
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, actor Actor, id uuid.UUID, patch TaskPatch) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, actor, id, patch)
	if err != nil {
		return task, err
	}

	s.invalidate(task.ID, task.UserID)
	s.cache.Set(taskKey(task.ID), task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, actor Actor, id uuid.UUID) error {
	task, getErr := s.taskService.GetTaskByID(db, actor, id)

	if err := s.taskService.DeleteTask(db, actor, id); err != nil {
		return err
	}

	if getErr == nil {
		s.invalidate(task.ID, task.UserID)
	} else {
		s.cache.Delete(taskKey(id))
	}

	return nil
}

func (s *CachedTaskService) GetTaskStats(db *gorm.DB, actor Actor) (TaskStats, error) {
	key := statsKey(actor)

	var cached TaskStats
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	stats, err := s.taskService.GetTaskStats(db, actor)
	if err != nil {
		return stats, err
	}

	s.cache.Set(key, stats, statsCacheTTL)

	return stats, nil
}
