package service

import (
	"time"

	"go.uber.org/zap"

	"peerhub/backend/config"
	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
)

// ── 公共测试夹具 ──

func testReviewConfig() *config.ReviewConfig {
	return &config.ReviewConfig{
		PeerDueDays:         7,
		AdminDueDays:        3,
		SweepInterval:       2 * time.Hour,
		SweepBatchSize:      200,
		ExpiryReminderHours: 24,
		AdminPriority:       10,
	}
}

// testEnv 按生产依赖顺序装配的完整服务栈（Redis 置空）
type testEnv struct {
	cfg   *config.ReviewConfig
	repo  *repository.Repository
	mocks *mockRepos

	notification NotificationService
	eligibility  EligibilityService
	factory      AssignmentFactory
	coverage     CoverageService
	assignment   AssignmentService
	sweeper      SweeperService
	submission   SubmissionService
}

func newTestEnv() *testEnv {
	repo, mocks := newMockRepos()
	cfg := testReviewConfig()
	logger := zap.NewNop()

	notification := NewNotificationService(repo, logger)
	eligibility := NewEligibilityService(repo, logger)
	factory := NewAssignmentFactory(cfg, repo, notification, logger)
	coverage := NewCoverageService(repo, eligibility, factory, notification, logger)
	assignment := NewAssignmentService(repo, coverage, notification, logger)
	sweeper := NewSweeperService(cfg, repo, assignment, notification, nil, logger)
	submission := NewSubmissionService(repo, coverage, logger)

	return &testEnv{
		cfg:          cfg,
		repo:         repo,
		mocks:        mocks,
		notification: notification,
		eligibility:  eligibility,
		factory:      factory,
		coverage:     coverage,
		assignment:   assignment,
		sweeper:      sweeper,
		submission:   submission,
	}
}

func (e *testEnv) seedMember(id string, difficulty int) *model.User {
	u := &model.User{
		UserID:          id,
		Name:            id,
		Email:           id + "@example.com",
		Role:            model.RoleMember,
		DifficultyLevel: difficulty,
		IsActive:        true,
	}
	e.mocks.users.users[id] = u
	return u
}

func (e *testEnv) seedStaff(id string) *model.User {
	u := &model.User{
		UserID:   id,
		Name:     id,
		Email:    id + "@example.com",
		Role:     model.RoleStaff,
		IsActive: true,
	}
	e.mocks.users.users[id] = u
	return u
}

func (e *testEnv) seedProject(id, category string, difficulty, minReviews int) *model.Project {
	p := &model.Project{
		ProjectID:  id,
		Title:      id,
		Category:   category,
		Difficulty: difficulty,
		MinReviews: minReviews,
		IsActive:   true,
	}
	p.Version = 1
	e.mocks.projects.projects[id] = p
	return p
}

func (e *testEnv) seedSubmission(id, projectID, userID, status string) *model.Submission {
	s := &model.Submission{
		SubmissionID: id,
		ProjectID:    projectID,
		UserID:       userID,
		Status:       status,
		Project:      e.mocks.projects.projects[projectID],
	}
	if status != model.SubmissionStatusDraft {
		now := time.Now()
		s.SubmittedAt = &now
	}
	e.mocks.submissions.submissions[id] = s
	return s
}

// seedAssignment 直接落一条分配记录，绕过工厂
func (e *testEnv) seedAssignment(id, submissionID, reviewerID, status string, dueDate time.Time) *model.Assignment {
	a := &model.Assignment{
		AssignmentID:   id,
		SubmissionID:   submissionID,
		ReviewerID:     &reviewerID,
		AssignmentType: model.AssignmentTypePeer,
		Status:         status,
		DueDate:        dueDate,
	}
	e.mocks.assignments.assignments[id] = a
	return a
}

func validReviewPayload() map[string]int {
	return map[string]int{"correctness": 80, "readability": 90}
}

func intPtr(n int) *int { return &n }
