package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/repository"
	pkgerrors "github.com/Lito08/FYPAS/pkg/errors"
)

// ── 内存存储 ──
// 所有 mock repo 共享同一个 memStore，以便预加载关联时能互相查询

type memStore struct {
	seq         int
	users       map[string]*model.User
	courses     map[string]*model.Course
	sections    map[string]*model.Section
	sessions    map[string]*model.ClassSession
	enrollments map[string]*model.Enrollment
	carts       map[string]*model.EnrollmentCart
	attendances map[string]*model.Attendance
	faces       map[string]*model.FaceRecognitionStatus
	userLocks   []string // LockByID 调用顺序
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]*model.User),
		courses:     make(map[string]*model.Course),
		sections:    make(map[string]*model.Section),
		sessions:    make(map[string]*model.ClassSession),
		enrollments: make(map[string]*model.Enrollment),
		carts:       make(map[string]*model.EnrollmentCart),
		attendances: make(map[string]*model.Attendance),
		faces:       make(map[string]*model.FaceRecognitionStatus),
	}
}

// nextID 生成按创建顺序可排序的 ID
func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

// newMockRepository 创建基于内存存储的 Repository 聚合（无数据库连接，BeginTx 返回 nil）
func newMockRepository() (*repository.Repository, *memStore) {
	st := newMemStore()
	return &repository.Repository{
		User:       &mockUserRepo{st},
		Course:     &mockCourseRepo{st},
		Section:    &mockSectionRepo{st},
		Session:    &mockSessionRepo{st},
		Enrollment: &mockEnrollmentRepo{st},
		Cart:       &mockCartRepo{st},
		Attendance: &mockAttendanceRepo{st},
		FaceStatus: &mockFaceStatusRepo{st},
	}, st
}

// sectionView 返回带课程与讲师关联的分组副本
func (s *memStore) sectionView(id string) *model.Section {
	sec, ok := s.sections[id]
	if !ok {
		return nil
	}
	cp := *sec
	if c, ok := s.courses[cp.CourseID]; ok {
		cc := *c
		cp.Course = &cc
	}
	if cp.LecturerID != nil {
		if u, ok := s.users[*cp.LecturerID]; ok {
			uu := *u
			cp.Lecturer = &uu
		}
	}
	return &cp
}

func (s *memStore) userView(id string) *model.User {
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// ── Mock UserRepository ──

type mockUserRepo struct{ st *memStore }

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.st.users {
		if u.MatricID == user.MatricID {
			return fmt.Errorf("duplicate matric_id %s", user.MatricID)
		}
	}
	if user.UserID == "" {
		user.UserID = m.st.nextID("user")
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.st.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u := m.st.userView(id); u != nil {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByMatricID(_ context.Context, matricID string) (*model.User, error) {
	for _, u := range m.st.users {
		if u.MatricID == matricID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(email)
	for _, u := range m.st.users {
		if strings.ToLower(u.Email) == email || (u.PersonalEmail != nil && strings.ToLower(*u.PersonalEmail) == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsMatricID(_ context.Context, matricID string) (bool, error) {
	for _, u := range m.st.users {
		if u.MatricID == matricID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) LockByID(_ context.Context, id string) error {
	if _, ok := m.st.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.st.userLocks = append(m.st.userLocks, id)
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.st.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.st.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.st.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, k := range sortedKeys(m.st.users) {
		u := m.st.users[k]
		if role != "" && u.Role != role {
			continue
		}
		all = append(all, *u)
	}
	return page(all, offset, limit), int64(len(all)), nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ st *memStore }

var _ repository.CourseRepository = (*mockCourseRepo)(nil)

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = m.st.nextID("course")
	}
	course.CreatedAt = time.Now()
	course.UpdatedAt = course.CreatedAt
	cp := *course
	cp.Sections = nil
	m.st.courses[course.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.st.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for _, c := range m.st.courses {
		if strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, keyword string, offset, limit int) ([]model.Course, int64, error) {
	var all []model.Course
	kw := strings.ToLower(keyword)
	for _, k := range sortedKeys(m.st.courses) {
		c := m.st.courses[k]
		if kw != "" && !strings.Contains(strings.ToLower(c.Code), kw) && !strings.Contains(strings.ToLower(c.Name), kw) {
			continue
		}
		all = append(all, *c)
	}
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	if _, ok := m.st.courses[course.CourseID]; !ok {
		return gorm.ErrRecordNotFound
	}
	course.UpdatedAt = time.Now()
	cp := *course
	cp.Sections = nil
	m.st.courses[course.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	delete(m.st.courses, id)
	return nil
}

// ── Mock SectionRepository ──

type mockSectionRepo struct{ st *memStore }

var _ repository.SectionRepository = (*mockSectionRepo)(nil)

func (m *mockSectionRepo) Create(ctx context.Context, section *model.Section) error {
	if existing, err := m.GetByCourseTypeNumber(ctx, section.CourseID, section.SectionType, section.SectionNumber); err == nil && existing != nil {
		return fmt.Errorf("duplicate section number %d", section.SectionNumber)
	}
	if section.SectionID == "" {
		section.SectionID = m.st.nextID("section")
	}
	if section.Version == 0 {
		section.Version = 1
	}
	section.CreatedAt = time.Now()
	cp := *section
	cp.Course, cp.Lecturer = nil, nil
	m.st.sections[section.SectionID] = &cp
	return nil
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	if sec := m.st.sectionView(id); sec != nil {
		return sec, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) GetByIDs(_ context.Context, ids []string) ([]model.Section, error) {
	var out []model.Section
	for _, id := range ids {
		if sec := m.st.sectionView(id); sec != nil {
			out = append(out, *sec)
		}
	}
	return out, nil
}

func (m *mockSectionRepo) LockByIDs(ctx context.Context, ids []string) ([]model.Section, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return m.GetByIDs(ctx, sorted)
}

func (m *mockSectionRepo) GetByCourseTypeNumber(_ context.Context, courseID, sectionType string, number int) (*model.Section, error) {
	for _, sec := range m.st.sections {
		if sec.CourseID == courseID && sec.SectionType == sectionType && sec.SectionNumber == number {
			cp := *sec
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) List(_ context.Context, filter repository.SectionFilter) ([]model.Section, error) {
	var out []model.Section
	for _, k := range sortedKeys(m.st.sections) {
		sec := m.st.sections[k]
		if filter.CourseID != "" && sec.CourseID != filter.CourseID {
			continue
		}
		if filter.LecturerID != "" && (sec.LecturerID == nil || *sec.LecturerID != filter.LecturerID) {
			continue
		}
		if filter.SectionType != "" && sec.SectionType != filter.SectionType {
			continue
		}
		out = append(out, *m.st.sectionView(k))
	}
	return out, nil
}

func (m *mockSectionRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Section, error) {
	return m.List(ctx, repository.SectionFilter{CourseID: courseID})
}

func (m *mockSectionRepo) ListByLecturerScheduled(ctx context.Context, lecturerID string) ([]model.Section, error) {
	all, _ := m.List(ctx, repository.SectionFilter{LecturerID: lecturerID})
	var out []model.Section
	for _, sec := range all {
		if sec.IsScheduled() {
			out = append(out, sec)
		}
	}
	return out, nil
}

func (m *mockSectionRepo) MaxNumber(_ context.Context, courseID, sectionType string) (int, error) {
	max := 0
	for _, sec := range m.st.sections {
		if sec.CourseID == courseID && sec.SectionType == sectionType && sec.SectionNumber > max {
			max = sec.SectionNumber
		}
	}
	return max, nil
}

func (m *mockSectionRepo) Update(_ context.Context, section *model.Section) error {
	stored, ok := m.st.sections[section.SectionID]
	if !ok || stored.Version != section.Version {
		return pkgerrors.ErrOptimisticLock
	}
	section.Version++
	cp := *section
	cp.Course, cp.Lecturer = nil, nil
	m.st.sections[section.SectionID] = &cp
	return nil
}

func (m *mockSectionRepo) Delete(_ context.Context, id string) error {
	delete(m.st.sections, id)
	return nil
}

func (m *mockSectionRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, sec := range m.st.sections {
		if sec.CourseID == courseID {
			delete(m.st.sections, id)
		}
	}
	return nil
}

// ── Mock ClassSessionRepository ──

type mockSessionRepo struct{ st *memStore }

var _ repository.ClassSessionRepository = (*mockSessionRepo)(nil)

func (m *mockSessionRepo) ReplaceBySection(_ context.Context, sectionID string, sessions []model.ClassSession) error {
	for id, cs := range m.st.sessions {
		if cs.SectionID == sectionID {
			delete(m.st.sessions, id)
		}
	}
	for i := range sessions {
		sessions[i].SessionID = m.st.nextID("session")
		cp := sessions[i]
		m.st.sessions[cp.SessionID] = &cp
	}
	return nil
}

func (m *mockSessionRepo) ListBySection(_ context.Context, sectionID string) ([]model.ClassSession, error) {
	var out []model.ClassSession
	for _, cs := range m.st.sessions {
		if cs.SectionID == sectionID {
			out = append(out, *cs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}

func (m *mockSessionRepo) GetBySectionWeek(_ context.Context, sectionID string, week int) (*model.ClassSession, error) {
	for _, cs := range m.st.sessions {
		if cs.SectionID == sectionID && cs.WeekNumber == week {
			cp := *cs
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) DeleteBySectionIDs(_ context.Context, sectionIDs []string) error {
	for _, sid := range sectionIDs {
		for id, cs := range m.st.sessions {
			if cs.SectionID == sid {
				delete(m.st.sessions, id)
			}
		}
	}
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct{ st *memStore }

var _ repository.EnrollmentRepository = (*mockEnrollmentRepo)(nil)

func (m *mockEnrollmentRepo) view(e *model.Enrollment) model.Enrollment {
	cp := *e
	cp.Student = m.st.userView(e.StudentID)
	cp.Section = m.st.sectionView(e.SectionID)
	return cp
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	for _, e := range m.st.enrollments {
		if e.StudentID == enrollment.StudentID && e.SectionID == enrollment.SectionID {
			return fmt.Errorf("duplicate enrollment")
		}
	}
	enrollment.EnrollmentID = m.st.nextID("enrollment")
	enrollment.CreatedAt = time.Now()
	cp := *enrollment
	cp.Student, cp.Section = nil, nil
	m.st.enrollments[cp.EnrollmentID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	if e, ok := m.st.enrollments[id]; ok {
		v := m.view(e)
		return &v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) Exists(_ context.Context, studentID, sectionID string) (bool, error) {
	for _, e := range m.st.enrollments {
		if e.StudentID == studentID && e.SectionID == sectionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentRepo) CountBySection(_ context.Context, sectionID string) (int64, error) {
	var n int64
	for _, e := range m.st.enrollments {
		if e.SectionID == sectionID {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollmentRepo) CountBySections(ctx context.Context, sectionIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(sectionIDs))
	for _, id := range sectionIDs {
		n, _ := m.CountBySection(ctx, id)
		if n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, k := range sortedKeys(m.st.enrollments) {
		if e := m.st.enrollments[k]; e.StudentID == studentID {
			out = append(out, m.view(e))
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) ListBySection(_ context.Context, sectionID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, k := range sortedKeys(m.st.enrollments) {
		if e := m.st.enrollments[k]; e.SectionID == sectionID {
			out = append(out, m.view(e))
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) List(_ context.Context, filter repository.EnrollmentFilter, offset, limit int) ([]model.Enrollment, int64, error) {
	var all []model.Enrollment
	for _, k := range sortedKeys(m.st.enrollments) {
		e := m.st.enrollments[k]
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.SectionID != "" && e.SectionID != filter.SectionID {
			continue
		}
		if filter.CourseID != "" {
			if sec, ok := m.st.sections[e.SectionID]; !ok || sec.CourseID != filter.CourseID {
				continue
			}
		}
		all = append(all, m.view(e))
	}
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, id string) error {
	delete(m.st.enrollments, id)
	return nil
}

func (m *mockEnrollmentRepo) DeleteBySectionIDs(_ context.Context, sectionIDs []string) error {
	for _, sid := range sectionIDs {
		for id, e := range m.st.enrollments {
			if e.SectionID == sid {
				delete(m.st.enrollments, id)
			}
		}
	}
	return nil
}

// ── Mock CartRepository ──

type mockCartRepo struct{ st *memStore }

var _ repository.CartRepository = (*mockCartRepo)(nil)

func (m *mockCartRepo) view(c *model.EnrollmentCart) model.EnrollmentCart {
	cp := *c
	if course, ok := m.st.courses[c.CourseID]; ok {
		cc := *course
		cp.Course = &cc
	}
	cp.LectureSection, cp.TutorialSection = nil, nil
	if c.LectureSectionID != nil {
		cp.LectureSection = m.st.sectionView(*c.LectureSectionID)
	}
	if c.TutorialSectionID != nil {
		cp.TutorialSection = m.st.sectionView(*c.TutorialSectionID)
	}
	return cp
}

func (m *mockCartRepo) Create(_ context.Context, cart *model.EnrollmentCart) error {
	for _, c := range m.st.carts {
		if c.StudentID == cart.StudentID && c.CourseID == cart.CourseID {
			return fmt.Errorf("duplicate cart row")
		}
	}
	cart.CartID = m.st.nextID("cart")
	cart.CreatedAt = time.Now()
	cp := *cart
	cp.Course, cp.LectureSection, cp.TutorialSection = nil, nil, nil
	m.st.carts[cp.CartID] = &cp
	return nil
}

func (m *mockCartRepo) GetByID(_ context.Context, id string) (*model.EnrollmentCart, error) {
	if c, ok := m.st.carts[id]; ok {
		v := m.view(c)
		return &v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCartRepo) GetByStudentCourse(_ context.Context, studentID, courseID string) (*model.EnrollmentCart, error) {
	for _, c := range m.st.carts {
		if c.StudentID == studentID && c.CourseID == courseID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCartRepo) ListByStudent(_ context.Context, studentID string) ([]model.EnrollmentCart, error) {
	var out []model.EnrollmentCart
	for _, k := range sortedKeys(m.st.carts) {
		if c := m.st.carts[k]; c.StudentID == studentID {
			out = append(out, m.view(c))
		}
	}
	return out, nil
}

func (m *mockCartRepo) UpdatePicks(_ context.Context, cart *model.EnrollmentCart) error {
	stored, ok := m.st.carts[cart.CartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.LectureSectionID = cart.LectureSectionID
	stored.TutorialSectionID = cart.TutorialSectionID
	stored.UpdatedBy = cart.UpdatedBy
	return nil
}

func (m *mockCartRepo) Delete(_ context.Context, id string) error {
	delete(m.st.carts, id)
	return nil
}

func (m *mockCartRepo) DeleteByStudent(_ context.Context, studentID string) error {
	for id, c := range m.st.carts {
		if c.StudentID == studentID {
			delete(m.st.carts, id)
		}
	}
	return nil
}

func (m *mockCartRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, c := range m.st.carts {
		if c.CourseID == courseID {
			delete(m.st.carts, id)
		}
	}
	return nil
}

func (m *mockCartRepo) DeleteBySectionIDs(_ context.Context, sectionIDs []string) error {
	drop := make(map[string]bool, len(sectionIDs))
	for _, id := range sectionIDs {
		drop[id] = true
	}
	for id, c := range m.st.carts {
		if (c.LectureSectionID != nil && drop[*c.LectureSectionID]) ||
			(c.TutorialSectionID != nil && drop[*c.TutorialSectionID]) {
			delete(m.st.carts, id)
		}
	}
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct{ st *memStore }

var _ repository.AttendanceRepository = (*mockAttendanceRepo)(nil)

func attendanceKey(studentID, sectionID string, week int) string {
	return fmt.Sprintf("%s|%s|%02d", sectionID, studentID, week)
}

func (m *mockAttendanceRepo) view(a *model.Attendance) model.Attendance {
	cp := *a
	cp.Student = m.st.userView(a.StudentID)
	cp.Section = m.st.sectionView(a.SectionID)
	return cp
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, a *model.Attendance) error {
	key := attendanceKey(a.StudentID, a.SectionID, a.WeekNumber)
	if existing, ok := m.st.attendances[key]; ok {
		a.AttendanceID = existing.AttendanceID
	} else {
		a.AttendanceID = m.st.nextID("attendance")
	}
	cp := *a
	cp.Student, cp.Section = nil, nil
	m.st.attendances[key] = &cp
	return nil
}

func (m *mockAttendanceRepo) Get(_ context.Context, studentID, sectionID string, week int) (*model.Attendance, error) {
	if a, ok := m.st.attendances[attendanceKey(studentID, sectionID, week)]; ok {
		v := m.view(a)
		return &v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) list(match func(a *model.Attendance) bool) []model.Attendance {
	var out []model.Attendance
	for _, k := range sortedKeys(m.st.attendances) {
		if a := m.st.attendances[k]; match(a) {
			out = append(out, m.view(a))
		}
	}
	return out
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID string) ([]model.Attendance, error) {
	return m.list(func(a *model.Attendance) bool { return a.StudentID == studentID }), nil
}

func (m *mockAttendanceRepo) ListByLecturer(_ context.Context, lecturerID string) ([]model.Attendance, error) {
	return m.list(func(a *model.Attendance) bool {
		sec, ok := m.st.sections[a.SectionID]
		return ok && sec.LecturerID != nil && *sec.LecturerID == lecturerID
	}), nil
}

func (m *mockAttendanceRepo) ListBySection(_ context.Context, sectionID string) ([]model.Attendance, error) {
	return m.list(func(a *model.Attendance) bool { return a.SectionID == sectionID }), nil
}

func (m *mockAttendanceRepo) DeleteBySectionIDs(_ context.Context, sectionIDs []string) error {
	for _, sid := range sectionIDs {
		for k, a := range m.st.attendances {
			if a.SectionID == sid {
				delete(m.st.attendances, k)
			}
		}
	}
	return nil
}

// ── Mock FaceStatusRepository ──

type mockFaceStatusRepo struct{ st *memStore }

var _ repository.FaceStatusRepository = (*mockFaceStatusRepo)(nil)

func (m *mockFaceStatusRepo) Get(_ context.Context, sectionID string) (*model.FaceRecognitionStatus, error) {
	if f, ok := m.st.faces[sectionID]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFaceStatusRepo) Upsert(_ context.Context, status *model.FaceRecognitionStatus) error {
	cp := *status
	m.st.faces[status.SectionID] = &cp
	return nil
}

func (m *mockFaceStatusRepo) DeleteBySectionIDs(_ context.Context, sectionIDs []string) error {
	for _, id := range sectionIDs {
		delete(m.st.faces, id)
	}
	return nil
}

// ── 测试数据构造 ──

func strPtr(s string) *string { return &s }

// seedUser 直接写入一个用户
func (s *memStore) seedUser(role, matricID string) *model.User {
	u := &model.User{
		UserID:    s.nextID("user"),
		MatricID:  matricID,
		Email:     matricID + "@university.com",
		FirstName: "Test",
		LastName:  matricID,
		Role:      role,
		IsActive:  true,
	}
	s.users[u.UserID] = u
	return u
}

// seedCourse 直接写入一门课程（不自动创建默认分组）
func (s *memStore) seedCourse(code string, tutorialRequired bool) *model.Course {
	c := &model.Course{
		CourseID:         s.nextID("course"),
		Code:             code,
		Name:             code + " Course",
		LectureRequired:  true,
		TutorialRequired: tutorialRequired,
	}
	s.courses[c.CourseID] = c
	return c
}

// seedSection 直接写入一个分组；date 为空表示未排课
func (s *memStore) seedSection(course *model.Course, sectionType string, number int, date, clock string, duration, maxStudents int) *model.Section {
	sec := &model.Section{
		SectionID:     s.nextID("section"),
		CourseID:      course.CourseID,
		SectionType:   sectionType,
		SectionNumber: number,
		Duration:      duration,
		MaxStudents:   maxStudents,
	}
	sec.Version = 1
	if date != "" {
		d, _ := time.Parse("2006-01-02", date)
		sec.StartDate = &d
		sec.ClassTime = strPtr(clock)
	}
	s.sections[sec.SectionID] = sec
	return sec
}

// seedEnrollment 直接写入一条已提交选课
func (s *memStore) seedEnrollment(studentID, sectionID string) *model.Enrollment {
	e := &model.Enrollment{EnrollmentID: s.nextID("enrollment"), StudentID: studentID, SectionID: sectionID}
	s.enrollments[e.EnrollmentID] = e
	return e
}

func (s *memStore) countEnrollments(studentID string) int {
	n := 0
	for _, e := range s.enrollments {
		if e.StudentID == studentID {
			n++
		}
	}
	return n
}
