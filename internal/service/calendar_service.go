package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
)

// ── 日历订阅 ────────────────────────────────────────────────
//
// 职责：将评审人的活跃评审任务导出为标准 iCalendar (RFC 5545)
// 订阅源，供日历客户端（webcal）跟踪评审截止时间。
//
// 设计决策：
//   - 每条活跃分配（assigned/accepted）生成一个以 due_date 为
//     DTSTART 的事件；终态任务不出现在日历中
//   - UID 取 assignment_id@peerhub，客户端据此做增量同步
//   - 内容只读：日历端的任何编辑不会回流到分配引擎
// ─────────────────────────────────────────────────────────────

const calendarProductID = "-//PeerHub//Review Assignments//CN"

// CalendarService 日历订阅业务接口
type CalendarService interface {
	// ReviewerFeed 生成评审人活跃任务的 ICS 订阅内容
	ReviewerFeed(ctx context.Context, reviewerID string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger}
}

func (s *calendarService) ReviewerFeed(ctx context.Context, reviewerID string) (string, error) {
	assignments, err := s.repo.Assignment.ListActiveByReviewer(ctx, reviewerID)
	if err != nil {
		s.logger.Error("查询活跃评审任务失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetName("PeerHub 评审任务")

	now := time.Now()
	for i := range assignments {
		a := &assignments[i]

		event := cal.AddEvent(fmt.Sprintf("%s@peerhub", a.AssignmentID))
		event.SetDtStampTime(now)
		event.SetStartAt(a.DueDate)
		event.SetEndAt(a.DueDate.Add(time.Hour))
		event.SetSummary(s.eventSummary(a))
		event.SetDescription(s.eventDescription(a))
		event.SetStatus(ics.ObjectStatusConfirmed)
	}

	return cal.Serialize(), nil
}

// eventSummary 事件标题：项目名优先，缺关联时退化为通用标题
func (s *calendarService) eventSummary(a *model.Assignment) string {
	if a.Submission != nil && a.Submission.Project != nil {
		return fmt.Sprintf("评审截止：%s", a.Submission.Project.Title)
	}
	return "评审任务截止"
}

func (s *calendarService) eventDescription(a *model.Assignment) string {
	statusNames := map[string]string{
		model.AssignmentStatusAssigned: "待接受",
		model.AssignmentStatusAccepted: "已接受",
	}
	return fmt.Sprintf("评审任务 %s（%s），请在截止时间前提交评审。",
		a.AssignmentID, statusNames[a.Status])
}
