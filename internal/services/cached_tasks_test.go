package services_test

import (
	"testing"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/models"
	"taskify/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type CachedTaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *services.CachedTaskService

	alice services.Actor
	bob   services.Actor
}

func (suite *CachedTaskServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(&models.User{}, &models.Task{}, &models.Token{}))

	suite.db = db
	suite.service = services.NewCachedTaskService(
		services.NewTaskService(10),
		cache.NewMultiLevelCache(nil),
	)

	suite.alice = suite.createUser("alice", "alice@x.com", models.RoleUser)
	suite.bob = suite.createUser("bob", "bob@x.com", models.RoleUser)
}

func (suite *CachedTaskServiceTestSuite) createUser(username, email, role string) services.Actor {
	user := models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: username,
		Email:    email,
		Password: "hashed",
		Role:     role,
	}
	suite.Require().NoError(suite.db.Create(&user).Error)
	return services.Actor{ID: user.ID, Role: user.Role}
}

func (suite *CachedTaskServiceTestSuite) TestGetTaskByID_CacheHitKeepsOwnershipCheck() {
	task, err := suite.service.CreateTask(suite.db, suite.alice, services.TaskInput{Title: "cached"})
	suite.Require().NoError(err)

	// Warm the cache as the owner, then probe as another user: the hit must
	// still look like not-found.
	_, err = suite.service.GetTaskByID(suite.db, suite.alice, task.ID)
	suite.Require().NoError(err)

	_, err = suite.service.GetTaskByID(suite.db, suite.bob, task.ID)
	suite.ErrorIs(err, services.ErrTaskNotFound)
}

func (suite *CachedTaskServiceTestSuite) TestGetTaskByID_ServesFromCache() {
	task, err := suite.service.CreateTask(suite.db, suite.alice, services.TaskInput{Title: "cached"})
	suite.Require().NoError(err)

	// Mutate the row behind the service's back; a cache hit returns the
	// stale copy, proving the cache is actually consulted.
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Update("title", "changed directly").Error)

	got, err := suite.service.GetTaskByID(suite.db, suite.alice, task.ID)
	suite.Require().NoError(err)
	suite.Equal("cached", got.Title)
}

func (suite *CachedTaskServiceTestSuite) TestStats_InvalidatedOnMutation() {
	_, err := suite.service.CreateTask(suite.db, suite.alice, services.TaskInput{Title: "T1"})
	suite.Require().NoError(err)

	stats, err := suite.service.GetTaskStats(suite.db, suite.alice)
	suite.Require().NoError(err)
	suite.EqualValues(1, stats.Total)

	task, err := suite.service.CreateTask(suite.db, suite.alice, services.TaskInput{Title: "T2", Completed: true})
	suite.Require().NoError(err)

	stats, err = suite.service.GetTaskStats(suite.db, suite.alice)
	suite.Require().NoError(err)
	suite.EqualValues(2, stats.Total)
	suite.EqualValues(1, stats.Completed)

	suite.Require().NoError(suite.service.DeleteTask(suite.db, suite.alice, task.ID))

	stats, err = suite.service.GetTaskStats(suite.db, suite.alice)
	suite.Require().NoError(err)
	suite.EqualValues(1, stats.Total)
	suite.EqualValues(0, stats.Completed)
}

func (suite *CachedTaskServiceTestSuite) TestUpdateTask_RefreshesCachedCopy() {
	task, err := suite.service.CreateTask(suite.db, suite.alice, services.TaskInput{Title: "before"})
	suite.Require().NoError(err)

	title := "after"
	_, err = suite.service.UpdateTask(suite.db, suite.alice, task.ID, services.TaskPatch{Title: &title})
	suite.Require().NoError(err)

	got, err := suite.service.GetTaskByID(suite.db, suite.alice, task.ID)
	suite.Require().NoError(err)
	suite.Equal("after", got.Title)
}

func TestCachedTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CachedTaskServiceTestSuite))
}
