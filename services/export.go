package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"blogcast-backend/internal/store"
)

const exportPageSize = 100

// ErrUnsupportedFormat is returned for export formats the service does not
// produce. Handlers treat it as a client error.
var ErrUnsupportedFormat = errors.New("export: unsupported format (valid: excel, json)")

// ExportService produces downloadable dumps of a user's blog posts.
type ExportService struct {
	store *store.Store
}

func NewExportService(st *store.Store) *ExportService {
	return &ExportService{store: st}
}

// ExportResult carries the ready-to-serve attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	RecordCount int
}

// ExportPosts renders all posts of a user in the requested format
// ("excel" or "json").
func (es *ExportService) ExportPosts(ctx context.Context, userID int64, format string) (*ExportResult, error) {
	posts, err := es.fetchAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().Format("2006-01-02")

	switch format {
	case "excel":
		data, err := es.buildExcel(posts)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("blog-posts-%s.xlsx", stamp),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
			RecordCount: len(posts),
		}, nil

	case "json":
		data, err := json.MarshalIndent(posts, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("export: marshal posts: %w", err)
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("blog-posts-%s.json", stamp),
			ContentType: "application/json",
			Data:        data,
			RecordCount: len(posts),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (es *ExportService) fetchAll(ctx context.Context, userID int64) ([]exportRow, error) {
	rows := []exportRow{}
	for page := 1; ; page++ {
		posts, total, err := es.store.ListBlogPosts(ctx, userID, page, exportPageSize)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			rows = append(rows, exportRow{
				ID:               p.ID,
				YoutubeTitle:     p.YoutubeTitle,
				YoutubeLink:      p.YoutubeLink,
				GeneratedContent: p.GeneratedContent,
				CreatedAt:        p.CreatedAt,
			})
		}
		if len(rows) >= total || len(posts) == 0 {
			return rows, nil
		}
	}
}

type exportRow struct {
	ID               int64     `json:"id"`
	YoutubeTitle     string    `json:"youtube_title"`
	YoutubeLink      string    `json:"youtube_link"`
	GeneratedContent string    `json:"generated_content"`
	CreatedAt        time.Time `json:"created_at"`
}

func (es *ExportService) buildExcel(rows []exportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Blog Posts"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Video Title", "Video Link", "Generated Content", "Created At"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, post := range rows {
		row := rowIdx + 2 // Start from row 2 (after headers)
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), post.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), post.YoutubeTitle)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), post.YoutubeLink)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), post.GeneratedContent)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), post.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}

	return buf.Bytes(), nil
}
