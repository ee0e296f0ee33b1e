package service

import (
	"context"
	"testing"
	"time"

	"peerhub/backend/internal/model"
)

// ── Sweep 测试 ──

func TestSweeperService_ExpiresOverdueWithReplacement(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 1)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusUnderReview)
	env.seedMember("author", 1)
	env.seedMember("slacker", 1)
	env.seedMember("spare", 1)
	env.seedAssignment("asg-001", "sub-001", "slacker", model.AssignmentStatusAssigned, time.Now().Add(-time.Hour))

	result, err := env.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep 应成功: %v", err)
	}
	if result.Scanned != 1 || result.Expired != 1 || result.Skipped != 0 {
		t.Errorf("期望 scanned=1 expired=1 skipped=0，实际=%+v", result)
	}
	if got := env.mocks.assignments.assignments["asg-001"].Status; got != model.AssignmentStatusExpired {
		t.Errorf("期望状态expired，实际=%s", got)
	}

	// 超期转换触发了恰好一条替补分配
	active, _ := env.mocks.assignments.CountActiveBySubmission(context.Background(), "sub-001")
	if active != 1 {
		t.Errorf("期望1条替补分配，实际=%d", active)
	}
}

func TestSweeperService_SkipsAcceptedNotOverdue(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 1)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusUnderReview)
	env.seedAssignment("asg-001", "sub-001", "diligent", model.AssignmentStatusAccepted, time.Now().Add(72*time.Hour))

	result, err := env.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep 应成功: %v", err)
	}
	if result.Scanned != 0 || result.Expired != 0 {
		t.Errorf("未超期任务不应被处理，实际=%+v", result)
	}
	if got := env.mocks.assignments.assignments["asg-001"].Status; got != model.AssignmentStatusAccepted {
		t.Errorf("状态应保持accepted，实际=%s", got)
	}
}

func TestSweeperService_RemindsExpiringOnce(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 1)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusUnderReview)
	// 12 小时后到期：落在 24 小时提醒窗口内
	env.seedAssignment("asg-001", "sub-001", "reviewer", model.AssignmentStatusAccepted, time.Now().Add(12*time.Hour))

	result, err := env.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep 应成功: %v", err)
	}
	if result.Reminded != 1 {
		t.Fatalf("期望提醒1条，实际=%d", result.Reminded)
	}
	if got := env.mocks.notifications.countByType(model.NotificationAssignmentExpiring); got != 1 {
		t.Errorf("期望1条到期提醒通知，实际=%d", got)
	}

	// 第二轮扫描不重复提醒
	result, err = env.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("第二轮 Sweep 应成功: %v", err)
	}
	if result.Reminded != 0 {
		t.Errorf("同一任务不应重复提醒，实际=%d", result.Reminded)
	}
	if got := env.mocks.notifications.countByType(model.NotificationAssignmentExpiring); got != 1 {
		t.Errorf("提醒通知应保持1条，实际=%d", got)
	}
}

func TestSweeperService_CountsLostRaceAsSkipped(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 1)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusUnderReview)
	env.seedMember("author", 1)
	env.seedMember("racer", 1)
	a := env.seedAssignment("asg-001", "sub-001", "racer", model.AssignmentStatusAssigned, time.Now().Add(-time.Hour))

	// 查询返回后、条件更新前被用户抢先完成
	env.mocks.assignments.afterListOverdue = func() {
		a.Status = model.AssignmentStatusCompleted
	}

	result, err := env.sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep 应成功: %v", err)
	}
	if result.Scanned != 1 || result.Expired != 0 || result.Skipped != 1 {
		t.Errorf("期望 scanned=1 expired=0 skipped=1，实际=%+v", result)
	}
	if got := a.Status; got != model.AssignmentStatusCompleted {
		t.Errorf("用户已完成的分配不应被覆盖，实际=%s", got)
	}
}
