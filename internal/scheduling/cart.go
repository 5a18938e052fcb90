package scheduling

// CartState 选课车行状态
type CartState string

const (
	CartEmpty           CartState = "empty"
	CartPartiallyFilled CartState = "partially_filled"
	CartComplete        CartState = "complete"
)

// 选课车槽位
const (
	SlotLecture  = "lecture"
	SlotTutorial = "tutorial"
)

// CartRow 某学生在某课程下的待提交选择
// 空字符串表示该槽位未选
type CartRow struct {
	CourseID          string
	CourseCode        string
	LectureSectionID  string
	TutorialSectionID string
	TutorialRequired  bool
}

// State 计算当前状态
// 讲课始终必选，辅导仅在课程要求时必选
func (r CartRow) State() CartState {
	if r.LectureSectionID == "" && r.TutorialSectionID == "" {
		return CartEmpty
	}
	if len(r.Missing()) == 0 {
		return CartComplete
	}
	return CartPartiallyFilled
}

// Missing 返回仍需选择的槽位
func (r CartRow) Missing() []string {
	var out []string
	if r.LectureSectionID == "" {
		out = append(out, SlotLecture)
	}
	if r.TutorialRequired && r.TutorialSectionID == "" {
		out = append(out, SlotTutorial)
	}
	return out
}

// Validate 提交前检查必选槽位
func (r CartRow) Validate() error {
	if r.LectureSectionID == "" {
		return ErrMissingLecture
	}
	if r.TutorialRequired && r.TutorialSectionID == "" {
		return ErrMissingTutorial
	}
	return nil
}

// SectionIDs 返回已选分组
func (r CartRow) SectionIDs() []string {
	var ids []string
	if r.LectureSectionID != "" {
		ids = append(ids, r.LectureSectionID)
	}
	if r.TutorialSectionID != "" {
		ids = append(ids, r.TutorialSectionID)
	}
	return ids
}

// RowError 指出哪一行未通过校验
type RowError struct {
	CourseID   string
	CourseCode string
	Err        error
}

func (e *RowError) Error() string {
	name := e.CourseCode
	if name == "" {
		name = e.CourseID
	}
	return name + ": " + e.Err.Error()
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ValidateCart 校验整个选课车，任一行不完整即整体失败
func ValidateCart(rows []CartRow) error {
	if len(rows) == 0 {
		return ErrCartEmpty
	}
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return &RowError{CourseID: r.CourseID, CourseCode: r.CourseCode, Err: err}
		}
	}
	return nil
}

// PickContext 选课时需要比较的已有时段
type PickContext struct {
	SameRowOther *Slot  // 同一行另一槽位
	OtherCart    []Slot // 其他课程的选课车时段
	Enrolled     []Slot // 已提交的选课
}

// CheckPick 校验候选分组与同行另一槽位、其他选课车行、已选课程均无冲突
func CheckPick(candidate Slot, pc PickContext) error {
	if !candidate.Scheduled {
		return ErrUnscheduledSection
	}
	existing := make([]Slot, 0, 1+len(pc.OtherCart)+len(pc.Enrolled))
	if pc.SameRowOther != nil {
		existing = append(existing, *pc.SameRowOther)
	}
	existing = append(existing, pc.OtherCart...)
	existing = append(existing, pc.Enrolled...)
	return CheckConflict(candidate, existing)
}
