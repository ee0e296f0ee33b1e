package handler

import "peerhub/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Project      *ProjectHandler
	Submission   *SubmissionHandler
	Assignment   *AssignmentHandler
	Notification *NotificationHandler
	Export       *ExportHandler
	Admin        *AdminHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Project:      NewProjectHandler(svc.Project),
		Submission:   NewSubmissionHandler(svc.Submission),
		Assignment:   NewAssignmentHandler(svc.Assignment, svc.Calendar),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
		Admin:        NewAdminHandler(svc.Assignment, svc.Coverage, svc.Sweeper),
	}
}
