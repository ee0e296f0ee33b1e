package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
	pkgerrors "peerhub/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Name
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) ListPeerCandidates(_ context.Context, excludeIDs []string) ([]model.User, error) {
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var result []model.User
	for _, u := range m.users {
		if !u.IsActive || u.Role != model.RoleMember || excluded[u.UserID] {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockUserRepo) ListStaff(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if !u.IsActive || u.Role == model.RoleMember {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool {
		li, lj := result[i].LastAssignedAt, result[j].LastAssignedAt
		switch {
		case li == nil && lj != nil:
			return true
		case li != nil && lj == nil:
			return false
		case li != nil && lj != nil && !li.Equal(*lj):
			return li.Before(*lj)
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

func (m *mockUserRepo) TouchLastAssigned(_ context.Context, userID string, at time.Time) error {
	if u, ok := m.users[userID]; ok {
		t := at
		u.LastAssignedAt = &t
	}
	return nil
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	projects map[string]*model.Project
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*model.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.Project) error {
	if project.ProjectID == "" {
		project.ProjectID = "proj-" + project.Title
	}
	if project.Version == 0 {
		project.Version = 1
	}
	m.projects[project.ProjectID] = project
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		snapshot := *p
		return &snapshot, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) List(_ context.Context, offset, limit int) ([]model.Project, int64, error) {
	var result []model.Project
	for _, p := range m.projects {
		if p.IsActive {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockProjectRepo) Update(_ context.Context, project *model.Project) error {
	stored, ok := m.projects[project.ProjectID]
	if !ok || stored.Version != project.Version {
		return pkgerrors.ErrOptimisticLock
	}
	project.Version++
	m.projects[project.ProjectID] = project
	return nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	submissions map[string]*model.Submission
	seq         int
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{submissions: make(map[string]*model.Submission)}
}

func (m *mockSubmissionRepo) Create(_ context.Context, submission *model.Submission) error {
	if submission.SubmissionID == "" {
		m.seq++
		submission.SubmissionID = fmt.Sprintf("sub-%03d", m.seq)
	}
	m.submissions[submission.SubmissionID] = submission
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	if s, ok := m.submissions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Submission, int64, error) {
	var result []model.Submission
	for _, s := range m.submissions {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmissionID < result[j].SubmissionID })
	return result, int64(len(result)), nil
}

func (m *mockSubmissionRepo) ListByProject(_ context.Context, projectID string) ([]model.Submission, error) {
	var result []model.Submission
	for _, s := range m.submissions {
		if s.ProjectID == projectID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmissionID < result[j].SubmissionID })
	return result, nil
}

func (m *mockSubmissionRepo) TransitionStatus(_ context.Context, submissionID string, fromStatuses []string, updates map[string]interface{}) error {
	s, ok := m.submissions[submissionID]
	if !ok {
		return pkgerrors.ErrOptimisticLock
	}
	matched := false
	for _, from := range fromStatuses {
		if s.Status == from {
			matched = true
			break
		}
	}
	if !matched {
		return pkgerrors.ErrOptimisticLock
	}
	if v, ok := updates["status"].(string); ok {
		s.Status = v
	}
	if v, ok := updates["submitted_at"].(time.Time); ok {
		t := v
		s.SubmittedAt = &t
	}
	return nil
}

// ── Mock AssignmentRepository ──
//
// TransitionStatus 与真实实现保持同一守卫语义：状态不在 fromStatuses
// 中时返回 ErrOptimisticLock，竞争测试依赖这一点。

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	submissions *mockSubmissionRepo
	seq         int

	// afterListOverdue 在 ListOverdue 返回前触发，用于模拟
	// 查询与条件更新之间的并发转换
	afterListOverdue func()
}

func newMockAssignmentRepo(submissions *mockSubmissionRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments: make(map[string]*model.Assignment),
		submissions: submissions,
	}
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *model.Assignment) error {
	if assignment.AssignmentID == "" {
		m.seq++
		assignment.AssignmentID = fmt.Sprintf("asg-%03d", m.seq)
	}
	// 模拟活跃唯一索引
	if assignment.ReviewerID != nil {
		for _, a := range m.assignments {
			if a.SubmissionID == assignment.SubmissionID &&
				a.ReviewerID != nil && *a.ReviewerID == *assignment.ReviewerID &&
				a.IsActive() {
				return fmt.Errorf("duplicate key value violates unique constraint %q", "uniq_active_assignment")
			}
		}
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if a.Submission == nil && m.submissions != nil {
		if s, ok := m.submissions.submissions[a.SubmissionID]; ok {
			a.Submission = s
		}
	}
	return a, nil
}

func (m *mockAssignmentRepo) sorted() []*model.Assignment {
	result := make([]*model.Assignment, 0, len(m.assignments))
	for _, a := range m.assignments {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result
}

func (m *mockAssignmentRepo) ListBySubmission(_ context.Context, submissionID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.sorted() {
		if a.SubmissionID == submissionID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListByReviewer(_ context.Context, reviewerID, status string, offset, limit int) ([]model.Assignment, int64, error) {
	var result []model.Assignment
	for _, a := range m.sorted() {
		if a.ReviewerID == nil || *a.ReviewerID != reviewerID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		result = append(result, *a)
	}
	return result, int64(len(result)), nil
}

func (m *mockAssignmentRepo) ListActiveByReviewer(_ context.Context, reviewerID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.sorted() {
		if a.ReviewerID != nil && *a.ReviewerID == reviewerID && a.IsActive() {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) ActiveReviewerIDs(_ context.Context, submissionID string) ([]string, error) {
	var ids []string
	for _, a := range m.assignments {
		if a.SubmissionID == submissionID && a.IsActive() && a.ReviewerID != nil {
			ids = append(ids, *a.ReviewerID)
		}
	}
	return ids, nil
}

func (m *mockAssignmentRepo) CountActiveBySubmission(_ context.Context, submissionID string) (int64, error) {
	var count int64
	for _, a := range m.assignments {
		if a.SubmissionID == submissionID && a.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *mockAssignmentRepo) CountCompletedBySubmission(_ context.Context, submissionID string) (int64, error) {
	var count int64
	for _, a := range m.assignments {
		if a.SubmissionID == submissionID && a.Status == model.AssignmentStatusCompleted {
			count++
		}
	}
	return count, nil
}

func (m *mockAssignmentRepo) HasActive(_ context.Context, submissionID, reviewerID string) (bool, error) {
	for _, a := range m.assignments {
		if a.SubmissionID == submissionID && a.ReviewerID != nil && *a.ReviewerID == reviewerID && a.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) ListOverdue(_ context.Context, now time.Time, limit int) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.sorted() {
		if a.IsOverdue(now) {
			result = append(result, *a)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	if m.afterListOverdue != nil {
		m.afterListOverdue()
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListExpiring(_ context.Context, now, until time.Time, limit int) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.sorted() {
		if a.IsActive() && a.RemindedAt == nil &&
			!a.DueDate.Before(now) && !a.DueDate.After(until) {
			result = append(result, *a)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockAssignmentRepo) MarkReminded(_ context.Context, assignmentID string, at time.Time) error {
	if a, ok := m.assignments[assignmentID]; ok {
		t := at
		a.RemindedAt = &t
	}
	return nil
}

func (m *mockAssignmentRepo) TransitionStatus(_ context.Context, assignmentID string, fromStatuses []string, updates map[string]interface{}) error {
	a, ok := m.assignments[assignmentID]
	if !ok {
		return pkgerrors.ErrOptimisticLock
	}
	matched := false
	for _, from := range fromStatuses {
		if a.Status == from {
			matched = true
			break
		}
	}
	if !matched {
		return pkgerrors.ErrOptimisticLock
	}
	if v, ok := updates["status"].(string); ok {
		a.Status = v
	}
	setTime := func(key string, dst **time.Time) {
		if v, ok := updates[key].(time.Time); ok {
			t := v
			*dst = &t
		}
	}
	setTime("accepted_at", &a.AcceptedAt)
	setTime("completed_at", &a.CompletedAt)
	setTime("rejected_at", &a.RejectedAt)
	setTime("expired_at", &a.ExpiredAt)
	setTime("cancelled_at", &a.CancelledAt)
	if v, ok := updates["rejection_reason"].(string); ok {
		a.RejectionReason = v
	}
	return nil
}

// ── Mock ReviewRepository ──

type mockReviewRepo struct {
	reviews     map[string]*model.Review
	submissions *mockSubmissionRepo
	projects    *mockProjectRepo
	seq         int
}

func newMockReviewRepo(submissions *mockSubmissionRepo, projects *mockProjectRepo) *mockReviewRepo {
	return &mockReviewRepo{
		reviews:     make(map[string]*model.Review),
		submissions: submissions,
		projects:    projects,
	}
}

func (m *mockReviewRepo) Create(_ context.Context, review *model.Review) error {
	// 模拟 assignment_id 唯一索引
	for _, r := range m.reviews {
		if r.AssignmentID == review.AssignmentID {
			return fmt.Errorf("duplicate key value violates unique constraint %q", "reviews_assignment_id")
		}
	}
	if review.ReviewID == "" {
		m.seq++
		review.ReviewID = fmt.Sprintf("rev-%03d", m.seq)
	}
	m.reviews[review.ReviewID] = review
	return nil
}

func (m *mockReviewRepo) GetByAssignment(_ context.Context, assignmentID string) (*model.Review, error) {
	for _, r := range m.reviews {
		if r.AssignmentID == assignmentID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReviewRepo) ListBySubmission(_ context.Context, submissionID string) ([]model.Review, error) {
	var result []model.Review
	for _, r := range m.reviews {
		if r.SubmissionID == submissionID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReviewID < result[j].ReviewID })
	return result, nil
}

func (m *mockReviewRepo) CountByReviewerInCategory(_ context.Context, reviewerIDs []string, category string) (map[string]int64, error) {
	wanted := make(map[string]bool, len(reviewerIDs))
	for _, id := range reviewerIDs {
		wanted[id] = true
	}
	result := make(map[string]int64)
	for _, r := range m.reviews {
		if !wanted[r.ReviewerID] {
			continue
		}
		sub, ok := m.submissions.submissions[r.SubmissionID]
		if !ok {
			continue
		}
		proj, ok := m.projects.projects[sub.ProjectID]
		if !ok || proj.Category != category {
			continue
		}
		result[r.ReviewerID]++
	}
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.NotificationID == "" {
		notification.NotificationID = fmt.Sprintf("ntf-%03d", len(m.notifications)+1)
	}
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	for _, n := range m.notifications {
		if n.NotificationID == notificationID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// countByType 测试辅助：按通知类型统计
func (m *mockNotificationRepo) countByType(notificationType string) int {
	count := 0
	for _, n := range m.notifications {
		if n.Type == notificationType {
			count++
		}
	}
	return count
}

// ── 聚合构造 ──

type mockRepos struct {
	users         *mockUserRepo
	projects      *mockProjectRepo
	submissions   *mockSubmissionRepo
	assignments   *mockAssignmentRepo
	reviews       *mockReviewRepo
	notifications *mockNotificationRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	users := newMockUserRepo()
	projects := newMockProjectRepo()
	submissions := newMockSubmissionRepo()
	assignments := newMockAssignmentRepo(submissions)
	reviews := newMockReviewRepo(submissions, projects)
	notifications := newMockNotificationRepo()

	repo := &repository.Repository{
		User:         users,
		Project:      projects,
		Submission:   submissions,
		Assignment:   assignments,
		Review:       reviews,
		Notification: notifications,
	}
	mocks := &mockRepos{
		users:         users,
		projects:      projects,
		submissions:   submissions,
		assignments:   assignments,
		reviews:       reviews,
		notifications: notifications,
	}
	return repo, mocks
}
