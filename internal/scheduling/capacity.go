package scheduling

// HasCapacity 已提交选课数小于上限时返回 true
// 选课车中的记录不占名额
func HasCapacity(enrolled, maxStudents int64) bool {
	return enrolled < maxStudents
}

// CheckCapacity 名额已满时返回 ErrSectionFull
func CheckCapacity(enrolled, maxStudents int64) error {
	if !HasCapacity(enrolled, maxStudents) {
		return ErrSectionFull
	}
	return nil
}

// Remaining 剩余名额，不会小于 0
func Remaining(enrolled, maxStudents int64) int64 {
	if enrolled >= maxStudents {
		return 0
	}
	return maxStudents - enrolled
}
