package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportProjectNotFound = errors.New("项目不存在")
	ErrExportNoSubmissions   = errors.New("该项目暂无已提交的作品")
	ErrExportGenerateFail    = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 覆盖报表按项目导出为 Excel (.xlsx)，供运营检查评审进度
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 覆盖统计按需从分配表重算，与 EnsureCoverage 使用同一数据源
type ExportService interface {
	// ExportCoverageReport 导出项目的评审覆盖报表为 Excel
	ExportCoverageReport(ctx context.Context, projectID string) (*bytes.Buffer, string, error)
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
// ExportCoverageReport — 导出评审覆盖报表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "覆盖报表"，每行一份已提交的作品（草稿不计入）
//   - 列：作品 ID | 作者 | 状态 | 要求评审数 | 已完成 | 在途 | 缺口 | 提交时间
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportCoverageReport(ctx context.Context, projectID string) (*bytes.Buffer, string, error) {
	// 1. 查询项目
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrExportProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 查询项目下的作品，过滤草稿
	all, err := s.repo.Submission.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("查询项目作品失败", zap.Error(err))
		return nil, "", err
	}
	submissions := make([]model.Submission, 0, len(all))
	for _, sub := range all {
		if sub.Status != model.SubmissionStatusDraft {
			submissions = append(submissions, sub)
		}
	}
	if len(submissions) == 0 {
		return nil, "", ErrExportNoSubmissions
	}

	statusNames := map[string]string{
		model.SubmissionStatusSubmitted:   "已提交",
		model.SubmissionStatusUnderReview: "评审中",
		model.SubmissionStatusReviewed:    "已评审",
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "覆盖报表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "G", 12)
	f.SetColWidth(sheetName, "H", "H", 20)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 评审覆盖报表", project.Title))
	f.MergeCell(sheetName, "A1", "H1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"作品 ID", "作者", "状态", "要求评审数", "已完成", "在途", "缺口", "提交时间"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	// 数据行
	row := 3
	for i := range submissions {
		sub := &submissions[i]

		completed, err := s.repo.Assignment.CountCompletedBySubmission(ctx, sub.SubmissionID)
		if err != nil {
			s.logger.Error("统计已完成评审失败", zap.Error(err))
			return nil, "", err
		}
		active, err := s.repo.Assignment.CountActiveBySubmission(ctx, sub.SubmissionID)
		if err != nil {
			s.logger.Error("统计活跃分配失败", zap.Error(err))
			return nil, "", err
		}
		needed := project.MinReviews - int(completed) - int(active)
		if needed < 0 {
			needed = 0
		}

		authorName := sub.UserID
		if sub.User != nil {
			authorName = sub.User.Name
		}
		submittedAt := "-"
		if sub.SubmittedAt != nil {
			submittedAt = sub.SubmittedAt.Format("2006-01-02 15:04")
		}

		f.SetCellValue(sheetName, cell("A", row), sub.SubmissionID)
		f.SetCellValue(sheetName, cell("B", row), authorName)
		f.SetCellValue(sheetName, cell("C", row), statusNames[sub.Status])
		f.SetCellValue(sheetName, cell("D", row), project.MinReviews)
		f.SetCellValue(sheetName, cell("E", row), completed)
		f.SetCellValue(sheetName, cell("F", row), active)
		f.SetCellValue(sheetName, cell("G", row), needed)
		f.SetCellValue(sheetName, cell("H", row), submittedAt)
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("覆盖报表_%s_%s.xlsx", project.Title, time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
