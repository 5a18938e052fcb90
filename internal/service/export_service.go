package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/internal/authz"
	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/repository"
	"github.com/Lito08/FYPAS/internal/scheduling"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmptyRoster  = errors.New("该分组暂无学生")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRoster 导出分组学生名单
	ExportRoster(ctx context.Context, callerID, callerRole, sectionID string) (*bytes.Buffer, string, error)
	// ExportAttendance 导出分组考勤表：学生 × 14 周
	ExportAttendance(ctx context.Context, callerID, callerRole, sectionID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster 导出分组名单
// ═══════════════════════════════════════════════════════════
//
// 表头：| # | 学号 | 姓名 | 邮箱 | 选课时间 |

func (s *exportService) ExportRoster(ctx context.Context, callerID, callerRole, sectionID string) (*bytes.Buffer, string, error) {
	sec, roster, err := s.load(ctx, callerID, callerRole, sectionID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "名单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "C", 24)
	f.SetColWidth(sheetName, "D", "D", 30)
	f.SetColWidth(sheetName, "E", "E", 20)

	headerStyle := s.headerStyle(f)
	f.SetCellValue(sheetName, "A1", sec.Label())
	f.MergeCell(sheetName, "A1", "E1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	headers := []string{"#", "学号", "姓名", "邮箱", "选课时间"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	row := 3
	for i, e := range roster {
		f.SetCellValue(sheetName, cell("A", row), i+1)
		if e.Student != nil {
			f.SetCellValue(sheetName, cell("B", row), e.Student.MatricID)
			f.SetCellValue(sheetName, cell("C", row), e.Student.FullName())
			f.SetCellValue(sheetName, cell("D", row), e.Student.Email)
		}
		f.SetCellValue(sheetName, cell("E", row), e.CreatedAt.UTC().Format("2006-01-02 15:04"))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("名单_%s.xlsx", sec.Label()), nil
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance 导出考勤表
// ═══════════════════════════════════════════════════════════
//
// 表头：| 学号 | 姓名 | 第1周 … 第14周 | 出勤 | 出勤率 |
// 未记录的周次留空，迟到计入出勤

func (s *exportService) ExportAttendance(ctx context.Context, callerID, callerRole, sectionID string) (*bytes.Buffer, string, error) {
	sec, roster, err := s.load(ctx, callerID, callerRole, sectionID)
	if err != nil {
		return nil, "", err
	}
	records, err := s.repo.Attendance.ListBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, "", err
	}

	// studentID → week → status
	index := make(map[string]map[int]string, len(roster))
	for _, a := range records {
		if index[a.StudentID] == nil {
			index[a.StudentID] = make(map[int]string)
		}
		index[a.StudentID][a.WeekNumber] = a.Status
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	weeks := scheduling.WeeksPerSemester
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 24)
	f.SetColWidth(sheetName, colName(2), colName(1+weeks), 9)

	headerStyle := s.headerStyle(f)
	lastCol := colName(3 + weeks)
	f.SetCellValue(sheetName, "A1", sec.Label())
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	f.SetCellValue(sheetName, cell("A", 2), "学号")
	f.SetCellValue(sheetName, cell("B", 2), "姓名")
	for w := 1; w <= weeks; w++ {
		f.SetCellValue(sheetName, cell(colName(1+w), 2), fmt.Sprintf("第%d周", w))
	}
	f.SetCellValue(sheetName, cell(colName(2+weeks), 2), "出勤")
	f.SetCellValue(sheetName, cell(lastCol, 2), "出勤率")

	row := 3
	for _, e := range roster {
		if e.Student != nil {
			f.SetCellValue(sheetName, cell("A", row), e.Student.MatricID)
			f.SetCellValue(sheetName, cell("B", row), e.Student.FullName())
		}
		attended := 0
		for w := 1; w <= weeks; w++ {
			status := index[e.StudentID][w]
			if status == scheduling.StatusPresent || status == scheduling.StatusLate {
				attended++
			}
			f.SetCellValue(sheetName, cell(colName(1+w), row), status)
		}
		f.SetCellValue(sheetName, cell(colName(2+weeks), row), attended)
		f.SetCellValue(sheetName, cell(lastCol, row), fmt.Sprintf("%.0f%%", float64(attended)*100/float64(weeks)))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("考勤_%s.xlsx", sec.Label()), nil
}

// load 查询分组与名单；讲师只能导出自己的分组
func (s *exportService) load(ctx context.Context, callerID, callerRole, sectionID string) (*model.Section, []model.Enrollment, error) {
	sec, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSectionNotFound
		}
		s.logger.Error("查询分组失败", zap.Error(err))
		return nil, nil, err
	}
	if authz.Role(callerRole) == authz.RoleLecturer && (sec.LecturerID == nil || *sec.LecturerID != callerID) {
		return nil, nil, ErrNotSectionLecturer
	}

	roster, err := s.repo.Enrollment.ListBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("查询分组名单失败", zap.Error(err))
		return nil, nil, err
	}
	if len(roster) == 0 {
		return nil, nil, ErrExportEmptyRoster
	}
	return sec, roster, nil
}

func (s *exportService) headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return style
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
