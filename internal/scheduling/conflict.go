package scheduling

// FindConflict 返回 candidate 与 existing 中第一个冲突的时段
// 未排课时段和与 candidate 同一分组的时段不参与比较
func FindConflict(candidate Slot, existing []Slot) *ConflictError {
	if !candidate.Scheduled {
		return nil
	}
	for _, other := range existing {
		if other.SectionID != "" && other.SectionID == candidate.SectionID {
			continue
		}
		if OverlapsWeekly(candidate, other) {
			return &ConflictError{Candidate: candidate, Existing: other}
		}
	}
	return nil
}

// CheckConflict 同 FindConflict，以 error 形式返回
func CheckConflict(candidate Slot, existing []Slot) error {
	if c := FindConflict(candidate, existing); c != nil {
		return c
	}
	return nil
}

// FindAllConflicts 两两比较一组时段，返回全部冲突对
func FindAllConflicts(slots []Slot) []ConflictError {
	var out []ConflictError
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if slots[i].SectionID != "" && slots[i].SectionID == slots[j].SectionID {
				continue
			}
			if OverlapsWeekly(slots[i], slots[j]) {
				out = append(out, ConflictError{Candidate: slots[i], Existing: slots[j]})
			}
		}
	}
	return out
}
