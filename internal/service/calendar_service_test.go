package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"peerhub/backend/internal/model"
)

// ── 日历订阅测试 ──

func TestCalendarService_ReviewerFeed(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 1)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusUnderReview)
	env.seedAssignment("asg-001", "sub-001", "reviewer", model.AssignmentStatusAccepted, time.Now().Add(48*time.Hour))
	env.seedAssignment("asg-002", "sub-001", "reviewer", model.AssignmentStatusCompleted, time.Now().Add(-24*time.Hour))
	svc := NewCalendarService(env.repo, zap.NewNop())

	feed, err := svc.ReviewerFeed(context.Background(), "reviewer")
	if err != nil {
		t.Fatalf("ReviewerFeed 应成功: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") || !strings.Contains(feed, "END:VCALENDAR") {
		t.Error("输出应为合法的 iCalendar 文档")
	}
	if !strings.Contains(feed, "asg-001@peerhub") {
		t.Error("活跃分配应出现在日历中")
	}
	if strings.Contains(feed, "asg-002@peerhub") {
		t.Error("终态分配不应出现在日历中")
	}
}

func TestCalendarService_EmptyFeed(t *testing.T) {
	env := newTestEnv()
	svc := NewCalendarService(env.repo, zap.NewNop())

	feed, err := svc.ReviewerFeed(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("无任务时 ReviewerFeed 应成功: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") {
		t.Error("空日历也应是合法文档")
	}
	if strings.Contains(feed, "BEGIN:VEVENT") {
		t.Error("空日历不应包含事件")
	}
}
