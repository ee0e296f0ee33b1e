package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"peerhub/backend/config"
	"peerhub/backend/internal/api/handler"
	"peerhub/backend/internal/api/middleware"
	"peerhub/backend/pkg/jwt"
	"peerhub/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, verifier *jwt.Verifier, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1（全部需要认证，Token 由外部身份服务签发）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(verifier, rdb))
	{
		// 项目模块
		projects := v1.Group("/projects")
		{
			projects.GET("", h.Project.List)
			projects.GET("/:id", h.Project.Get)
			projects.POST("", middleware.RoleAuth("staff", "admin"), h.Project.Create)
			projects.PUT("/:id", middleware.RoleAuth("staff", "admin"), h.Project.Update)
		}

		// 作品提交模块
		submissions := v1.Group("/submissions")
		{
			submissions.POST("", h.Submission.Create)
			submissions.GET("/my", h.Submission.ListMine)
			submissions.GET("/:id", h.Submission.Get) // 作者或平台人员（Service 层鉴权）
			submissions.POST("/:id/submit", middleware.RateLimit(rdb, 10, time.Minute), h.Submission.Submit)
		}

		// 评审分配模块
		assignments := v1.Group("/assignments")
		{
			assignments.GET("/my", h.Assignment.ListMine)
			assignments.GET("/my/calendar.ics", h.Assignment.Calendar)
			assignments.GET("/:id", h.Assignment.Get)
			assignments.POST("/:id/accept", h.Assignment.Accept)
			assignments.POST("/:id/reject", h.Assignment.Reject)
			assignments.POST("/:id/review", h.Assignment.SubmitReview)
		}

		// 通知模块
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.POST("/:id/read", h.Notification.MarkRead)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/coverage-report", middleware.RoleAuth("staff", "admin"), h.Export.ExportCoverageReport)
		}

		// 运营管理模块
		admin := v1.Group("/admin")
		admin.Use(middleware.RoleAuth("staff", "admin"))
		{
			admin.POST("/sweep", h.Admin.Sweep)
			admin.POST("/assignments/:id/cancel", h.Admin.CancelAssignment)
			admin.POST("/assignments/:id/reassign", h.Admin.ReassignAssignment)
			admin.POST("/submissions/:id/ensure-coverage", h.Admin.EnsureCoverage)
			admin.GET("/submissions/:id/assignments", h.Admin.ListSubmissionAssignments)
		}
	}

	return r
}
