package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"peerhub/backend/internal/model"
)

// ── 覆盖报表导出测试 ──

func TestExportService_CoverageReport(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 2)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusUnderReview)
	env.seedSubmission("sub-002", "proj-go", "other", model.SubmissionStatusDraft) // 草稿不计入
	env.seedAssignment("asg-1", "sub-001", "r1", model.AssignmentStatusCompleted, time.Now().Add(-24*time.Hour))
	env.seedAssignment("asg-2", "sub-001", "r2", model.AssignmentStatusAccepted, time.Now().Add(24*time.Hour))
	svc := NewExportService(env.repo, zap.NewNop())

	buf, filename, err := svc.ExportCoverageReport(context.Background(), "proj-go")
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if buf == nil || buf.Len() == 0 {
		t.Fatal("导出内容不应为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") || !strings.Contains(filename, "proj-go") {
		t.Errorf("文件名格式不符: %s", filename)
	}
}

func TestExportService_ProjectNotFound(t *testing.T) {
	env := newTestEnv()
	svc := NewExportService(env.repo, zap.NewNop())

	_, _, err := svc.ExportCoverageReport(context.Background(), "missing")
	if !errors.Is(err, ErrExportProjectNotFound) {
		t.Errorf("期望 ErrExportProjectNotFound，实际: %v", err)
	}
}

func TestExportService_NoSubmissions(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 2)
	env.seedSubmission("sub-001", "proj-go", "author", model.SubmissionStatusDraft)
	svc := NewExportService(env.repo, zap.NewNop())

	_, _, err := svc.ExportCoverageReport(context.Background(), "proj-go")
	if !errors.Is(err, ErrExportNoSubmissions) {
		t.Errorf("只有草稿时期望 ErrExportNoSubmissions，实际: %v", err)
	}
}
