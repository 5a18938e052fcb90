package scheduling

import "time"

// DefaultFaceWindow 人脸识别开启后的默认有效时长
const DefaultFaceWindow = time.Minute

// IsExpired 人脸识别开关是否已过期
// 未开启（零值）视为已过期；在读取时计算，不依赖后台定时器
func IsExpired(enabledAt, now time.Time, window time.Duration) bool {
	if enabledAt.IsZero() {
		return true
	}
	if window <= 0 {
		window = DefaultFaceWindow
	}
	return !now.Before(enabledAt.Add(window))
}

// FaceActive 开关打开且未过期
func FaceActive(enabled bool, enabledAt, now time.Time, window time.Duration) bool {
	return enabled && !IsExpired(enabledAt, now, window)
}
