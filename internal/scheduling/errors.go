package scheduling

import (
	"errors"
	"fmt"
)

// ── 排课领域错误 ──
// 均为可恢复的业务错误，由 handler 映射为 4xx；存储层故障不在此列

var (
	ErrScheduleConflict       = errors.New("时间冲突")
	ErrSectionFull            = errors.New("该分组名额已满")
	ErrMissingRequiredSection = errors.New("缺少必选分组")
	ErrMissingLecture         = fmt.Errorf("%w: 未选择讲课分组", ErrMissingRequiredSection)
	ErrMissingTutorial        = fmt.Errorf("%w: 未选择辅导分组", ErrMissingRequiredSection)
	ErrDuplicateEnrollment    = errors.New("已选过该分组")
	ErrUnscheduledSection     = errors.New("该分组尚未排课")
	ErrCartEmpty              = errors.New("选课车为空")
	ErrInvalidClock           = errors.New("时间格式错误，应为 HH:MM")
)

// ConflictError 描述两个分组之间的时间冲突
type ConflictError struct {
	Candidate Slot
	Existing  Slot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s 与 %s 时间冲突", e.Candidate.describe(), e.Existing.describe())
}

// Unwrap 使 errors.Is(err, ErrScheduleConflict) 成立
func (e *ConflictError) Unwrap() error {
	return ErrScheduleConflict
}
