package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 结果标签
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultFull     = "full"
	ResultMissing  = "missing_section"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	// EnrollmentOps 选课相关操作结果，operation ∈ add_pick|finalize|admin_enroll|unenroll
	EnrollmentOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fypas_enrollment_operations_total",
			Help: "Enrollment operations by outcome",
		},
		[]string{"operation", "result"},
	)

	// SessionsGenerated 生成的课次数
	SessionsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fypas_class_sessions_generated_total",
			Help: "Class sessions materialised by the weekly generator",
		},
	)

	// CheckIns 签到次数
	CheckIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fypas_attendance_checkins_total",
			Help: "Attendance check-ins by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fypas_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
