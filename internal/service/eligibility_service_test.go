package service

import (
	"context"
	"testing"
	"time"

	"peerhub/backend/internal/model"
)

// ── FindCandidates 测试 ──

func TestEligibilityService_ExcludesSubmitterAndActiveReviewers(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 2, 2)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusSubmitted)
	env.seedMember("author", 2)
	env.seedMember("busy", 2)
	env.seedMember("free", 2)
	env.seedAssignment("asg-busy", "sub-001", "busy", model.AssignmentStatusAssigned, time.Now().Add(24*time.Hour))

	candidates, err := env.eligibility.FindCandidates(context.Background(), "sub-001", "author", "golang", 2, 10)
	if err != nil {
		t.Fatalf("FindCandidates 应成功: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("期望1个候选人，实际=%d", len(candidates))
	}
	if candidates[0].UserID != "free" {
		t.Errorf("期望候选人free，实际=%s", candidates[0].UserID)
	}
}

func TestEligibilityService_PrefersCategoryExperience(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 1)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusSubmitted)
	env.seedMember("author", 1)
	env.seedMember("novice", 1)
	veteran := env.seedMember("veteran", 1)

	// veteran 在 golang 类别下有一条历史评审
	env.seedSubmission("sub-old", "proj-go", "someone", model.SubmissionStatusReviewed)
	env.mocks.reviews.reviews["rev-old"] = &model.Review{
		ReviewID:     "rev-old",
		AssignmentID: "asg-old",
		SubmissionID: "sub-old",
		ReviewerID:   veteran.UserID,
		OverallScore: 85,
	}

	candidates, err := env.eligibility.FindCandidates(context.Background(), "sub-001", "author", "golang", 1, 1)
	if err != nil {
		t.Fatalf("FindCandidates 应成功: %v", err)
	}
	if len(candidates) != 1 || candidates[0].UserID != "veteran" {
		t.Errorf("期望优先选择有类别经验的veteran，实际=%v", candidates)
	}
}

func TestEligibilityService_PrefersSufficientDifficulty(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-hard", "golang", 3, 1)
	env.seedSubmission("sub-001", "proj-hard", "author", model.SubmissionStatusSubmitted)
	env.seedMember("author", 3)
	env.seedMember("junior", 1)
	env.seedMember("senior", 3)

	candidates, err := env.eligibility.FindCandidates(context.Background(), "sub-001", "author", "golang", 3, 2)
	if err != nil {
		t.Fatalf("FindCandidates 应成功: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("期望2个候选人，实际=%d", len(candidates))
	}
	if candidates[0].UserID != "senior" {
		t.Errorf("期望难度达标的senior排在最前，实际=%s", candidates[0].UserID)
	}
}

func TestEligibilityService_TieBreakByLeastRecentlyAssigned(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 1)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusSubmitted)
	env.seedMember("author", 1)

	recent := env.seedMember("recent", 1)
	recentTime := time.Now().Add(-time.Hour)
	recent.LastAssignedAt = &recentTime

	idle := env.seedMember("idle", 1)
	idleTime := time.Now().Add(-72 * time.Hour)
	idle.LastAssignedAt = &idleTime

	env.seedMember("fresh", 1) // 从未被分配，应排最前

	candidates, err := env.eligibility.FindCandidates(context.Background(), "sub-001", "author", "golang", 1, 3)
	if err != nil {
		t.Fatalf("FindCandidates 应成功: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("期望3个候选人，实际=%d", len(candidates))
	}
	got := []string{candidates[0].UserID, candidates[1].UserID, candidates[2].UserID}
	want := []string{"fresh", "idle", "recent"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望排序%v，实际=%v", want, got)
		}
	}
}

func TestEligibilityService_EmptyPool(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 1)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusSubmitted)
	env.seedMember("author", 1)

	candidates, err := env.eligibility.FindCandidates(context.Background(), "sub-001", "author", "golang", 1, 3)
	if err != nil {
		t.Fatalf("候选池为空不应报错: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("期望0个候选人，实际=%d", len(candidates))
	}
}

func TestEligibilityService_ZeroLimit(t *testing.T) {
	env := newTestEnv()
	env.seedMember("someone", 1)

	candidates, err := env.eligibility.FindCandidates(context.Background(), "sub-001", "author", "golang", 1, 0)
	if err != nil {
		t.Fatalf("limit=0 不应报错: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("limit=0 应返回空结果，实际=%d", len(candidates))
	}
}
