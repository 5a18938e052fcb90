//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/repository"
	"github.com/Lito08/FYPAS/internal/scheduling"
	"github.com/Lito08/FYPAS/internal/service"
	"github.com/Lito08/FYPAS/pkg/database"
	pkgerrors "github.com/Lito08/FYPAS/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var (
	testDB *gorm.DB
	seq    atomic.Int64
)

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=fypas password=fypas_password dbname=fypas_test sslmode=disable TimeZone=Asia/Kuala_Lumpur"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用正式迁移建表，唯一约束与 ON CONFLICT 依赖它们
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	seq.Store(time.Now().UnixNano() % 1_000_000)
	code := m.Run()
	os.Exit(code)
}

type fixture struct {
	course   *model.Course
	lecturer *model.User
	student  *model.User
	lecture  *model.Section
}

// setupTestData 创建课程、讲师、学生与一个已排课讲课分组，返回清理函数
func setupTestData(t *testing.T) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	n := seq.Add(1)

	course := &model.Course{
		Code:            fmt.Sprintf("IT%06d", n%1_000_000),
		Name:            "集成测试课程",
		LectureRequired: true,
	}
	if err := testDB.WithContext(ctx).Create(course).Error; err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	newUser := func(prefix, role string) *model.User {
		u := &model.User{
			MatricID:     fmt.Sprintf("%s%09d", prefix, n%1_000_000_000),
			Email:        fmt.Sprintf("%s%d@university.com", prefix, n),
			FirstName:    "Test",
			LastName:     role,
			PasswordHash: "$2a$10$placeholder",
			Role:         role,
		}
		if err := testDB.WithContext(ctx).Create(u).Error; err != nil {
			t.Fatalf("创建用户失败: %v", err)
		}
		return u
	}
	lecturer := newUser("LEC", "Lecturer")
	student := newUser("STU", "Student")

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	classTime := "09:00"
	lecture := &model.Section{
		CourseID:      course.CourseID,
		SectionType:   model.SectionTypeLecture,
		SectionNumber: 1,
		LecturerID:    &lecturer.UserID,
		StartDate:     &start,
		ClassTime:     &classTime,
		Duration:      90,
		MaxStudents:   2,
	}
	if err := testDB.WithContext(ctx).Create(lecture).Error; err != nil {
		t.Fatalf("创建分组失败: %v", err)
	}

	cleanup := func() {
		db := testDB.Unscoped()
		db.Where("section_id = ?", lecture.SectionID).Delete(&model.FaceRecognitionStatus{})
		db.Where("course_id = ?", course.CourseID).Delete(&model.EnrollmentCart{})
		db.Where("section_id IN (?)", db.Model(&model.Section{}).Select("section_id").Where("course_id = ?", course.CourseID)).Delete(&model.Attendance{})
		db.Where("section_id IN (?)", db.Model(&model.Section{}).Select("section_id").Where("course_id = ?", course.CourseID)).Delete(&model.Enrollment{})
		db.Where("section_id IN (?)", db.Model(&model.Section{}).Select("section_id").Where("course_id = ?", course.CourseID)).Delete(&model.ClassSession{})
		db.Where("course_id = ?", course.CourseID).Delete(&model.Section{})
		db.Where("course_id = ?", course.CourseID).Delete(&model.Course{})
		db.Where("user_id IN ?", []string{lecturer.UserID, student.UserID}).Delete(&model.User{})
	}
	return &fixture{course: course, lecturer: lecturer, student: student, lecture: lecture}, cleanup
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	enr := &model.Enrollment{StudentID: f.student.UserID, SectionID: f.lecture.SectionID}
	if err := txRepo.Enrollment.Create(ctx, enr); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建选课失败: %v", err)
	}

	tx.Rollback()

	exists, err := repo.Enrollment.Exists(ctx, f.student.UserID, f.lecture.SectionID)
	if err != nil {
		t.Fatalf("Exists 失败: %v", err)
	}
	if exists {
		t.Fatal("期望回滚后查不到选课记录，但实际查到了")
	}
}

func TestTransaction_Commit(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	if _, err := txRepo.Section.LockByIDs(ctx, []string{f.lecture.SectionID}); err != nil {
		tx.Rollback()
		t.Fatalf("LockByIDs 失败: %v", err)
	}
	if err := txRepo.User.LockByID(ctx, f.student.UserID); err != nil {
		tx.Rollback()
		t.Fatalf("LockByID 失败: %v", err)
	}
	enr := &model.Enrollment{StudentID: f.student.UserID, SectionID: f.lecture.SectionID}
	if err := txRepo.Enrollment.Create(ctx, enr); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建选课失败: %v", err)
	}

	if err := tx.Commit().Error; err != nil {
		t.Fatalf("Commit 失败: %v", err)
	}

	count, err := repo.Enrollment.CountBySection(ctx, f.lecture.SectionID)
	if err != nil {
		t.Fatalf("CountBySection 失败: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 enrollment, got %d", count)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Constraints
// ═══════════════════════════════════════════════════════════

func TestEnrollment_DuplicateRejected(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first := &model.Enrollment{StudentID: f.student.UserID, SectionID: f.lecture.SectionID}
	if err := repo.Enrollment.Create(ctx, first); err != nil {
		t.Fatalf("首次选课失败: %v", err)
	}
	dup := &model.Enrollment{StudentID: f.student.UserID, SectionID: f.lecture.SectionID}
	if err := repo.Enrollment.Create(ctx, dup); err == nil {
		t.Fatal("期望重复选课违反唯一约束")
	}
}

func TestSection_DuplicateNumberRejected(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	dup := &model.Section{
		CourseID:      f.course.CourseID,
		SectionType:   model.SectionTypeLecture,
		SectionNumber: f.lecture.SectionNumber,
		Duration:      60,
		MaxStudents:   30,
	}
	if err := repository.NewRepository(testDB).Section.Create(context.Background(), dup); err == nil {
		t.Fatal("期望同课程同类型同编号被拒绝")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestSection_OptimisticLock(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	a, err := repo.Section.GetByID(ctx, f.lecture.SectionID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	b, err := repo.Section.GetByID(ctx, f.lecture.SectionID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}

	a.MaxStudents = 40
	if err := repo.Section.Update(ctx, a); err != nil {
		t.Fatalf("第一次更新失败: %v", err)
	}
	if a.Version != b.Version+1 {
		t.Errorf("expected version %d, got %d", b.Version+1, a.Version)
	}

	b.MaxStudents = 50
	if err := repo.Section.Update(ctx, b); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("expected ErrOptimisticLock, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Sessions / Attendance / Cart
// ═══════════════════════════════════════════════════════════

func TestClassSession_Replace(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	build := func(n int) []model.ClassSession {
		out := make([]model.ClassSession, 0, n)
		for w := 1; w <= n; w++ {
			out = append(out, model.ClassSession{
				SectionID:  f.lecture.SectionID,
				WeekNumber: w,
				Date:       f.lecture.StartDate.AddDate(0, 0, 7*(w-1)),
				StartTime:  "09:00",
			})
		}
		return out
	}

	if err := repo.Session.ReplaceBySection(ctx, f.lecture.SectionID, build(14)); err != nil {
		t.Fatalf("首次生成课次失败: %v", err)
	}
	// 重建不应触发 (section, week) 唯一约束
	if err := repo.Session.ReplaceBySection(ctx, f.lecture.SectionID, build(14)); err != nil {
		t.Fatalf("重建课次失败: %v", err)
	}

	list, err := repo.Session.ListBySection(ctx, f.lecture.SectionID)
	if err != nil {
		t.Fatalf("ListBySection 失败: %v", err)
	}
	if len(list) != 14 {
		t.Fatalf("expected 14 sessions, got %d", len(list))
	}

	s, err := repo.Session.GetBySectionWeek(ctx, f.lecture.SectionID, 3)
	if err != nil {
		t.Fatalf("GetBySectionWeek 失败: %v", err)
	}
	if got := s.Date.Format("2006-01-02"); got != "2025-01-20" {
		t.Errorf("expected week 3 on 2025-01-20, got %s", got)
	}
}

func TestAttendance_UpsertOverwrites(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	first := &model.Attendance{
		StudentID:  f.student.UserID,
		SectionID:  f.lecture.SectionID,
		WeekNumber: 1,
		Date:       date,
		Status:     "Absent",
		Method:     model.CheckInMethodManual,
	}
	if err := repo.Attendance.Upsert(ctx, first); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}

	checkedIn := "09:05:00"
	second := &model.Attendance{
		StudentID:     f.student.UserID,
		SectionID:     f.lecture.SectionID,
		WeekNumber:    1,
		Date:          date,
		TimeCheckedIn: &checkedIn,
		Status:        "Present",
		Method:        model.CheckInMethodQR,
	}
	if err := repo.Attendance.Upsert(ctx, second); err != nil {
		t.Fatalf("覆盖写入失败: %v", err)
	}

	got, err := repo.Attendance.Get(ctx, f.student.UserID, f.lecture.SectionID, 1)
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if got.Status != "Present" || got.Method != model.CheckInMethodQR {
		t.Errorf("expected Present/qr, got %s/%s", got.Status, got.Method)
	}

	list, err := repo.Attendance.ListBySection(ctx, f.lecture.SectionID)
	if err != nil {
		t.Fatalf("ListBySection 失败: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 record per (student, section, week), got %d", len(list))
	}
}

func TestCart_DeleteBySectionIDs(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	cart := &model.EnrollmentCart{
		StudentID:        f.student.UserID,
		CourseID:         f.course.CourseID,
		LectureSectionID: &f.lecture.SectionID,
	}
	if err := repo.Cart.Create(ctx, cart); err != nil {
		t.Fatalf("创建选课车失败: %v", err)
	}

	if err := repo.Cart.DeleteBySectionIDs(ctx, []string{f.lecture.SectionID}); err != nil {
		t.Fatalf("DeleteBySectionIDs 失败: %v", err)
	}

	if _, err := repo.Cart.GetByID(ctx, cart.CartID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected cart row deleted, got err=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Concurrent Finalize
// ═══════════════════════════════════════════════════════════

func TestFinalize_ConcurrentLastSeat(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	if err := testDB.Model(&model.Section{}).
		Where("section_id = ?", f.lecture.SectionID).
		Update("max_students", 1).Error; err != nil {
		t.Fatalf("设置名额失败: %v", err)
	}

	n := seq.Add(1)
	other := &model.User{
		MatricID:     fmt.Sprintf("SRC%09d", n%1_000_000_000),
		Email:        fmt.Sprintf("src%d@university.com", n),
		FirstName:    "Test",
		LastName:     "Student",
		PasswordHash: "$2a$10$placeholder",
		Role:         "Student",
	}
	if err := testDB.Create(other).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	defer testDB.Unscoped().Where("user_id = ?", other.UserID).Delete(&model.User{})

	students := []string{f.student.UserID, other.UserID}
	for _, id := range students {
		cart := &model.EnrollmentCart{StudentID: id, CourseID: f.course.CourseID, LectureSectionID: &f.lecture.SectionID}
		if err := repo.Cart.Create(ctx, cart); err != nil {
			t.Fatalf("创建选课车失败: %v", err)
		}
	}

	carts := service.NewCartService(repo, zap.NewNop())

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, len(students))
	)
	for i, id := range students {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			<-start
			_, errs[i] = carts.Finalize(ctx, id)
		}(i, id)
	}
	close(start)
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, scheduling.ErrSectionFull):
			full++
		default:
			t.Errorf("unexpected finalize error: %v", err)
		}
	}
	if succeeded != 1 || full != 1 {
		t.Errorf("expected 1 success and 1 ErrSectionFull, got success=%d full=%d (%v)", succeeded, full, errs)
	}

	count, err := repo.Enrollment.CountBySection(ctx, f.lecture.SectionID)
	if err != nil {
		t.Fatalf("CountBySection 失败: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 enrollment on a 1-seat section, got %d", count)
	}
}

func TestSectionCreate_ConcurrentLecturerOverlap(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	sections := service.NewSectionService(repository.NewRepository(testDB), zap.NewNop())

	date, clock := "2025-01-08", "14:00"
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = sections.Create(ctx, &dto.CreateSectionRequest{
				CourseID:      f.course.CourseID,
				SectionType:   model.SectionTypeLecture,
				SectionNumber: 10 + i,
				LecturerID:    &f.lecturer.UserID,
				StartDate:     &date,
				ClassTime:     &clock,
			}, f.lecturer.UserID)
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, scheduling.ErrScheduleConflict):
			conflicted++
		default:
			t.Errorf("unexpected create error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Errorf("expected 1 success and 1 ErrScheduleConflict, got success=%d conflict=%d (%v)", succeeded, conflicted, errs)
	}
}
