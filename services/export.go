package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-campaign-platform/internal/auth"
	"social-campaign-platform/models"
)

// ExportRequest represents the request parameters for campaign export
type ExportRequest struct {
	Format    string    `json:"format" binding:"required,oneof=json excel"`
	DateFrom  time.Time `json:"date_from,omitempty"`
	DateTo    time.Time `json:"date_to,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Limit     int       `json:"limit,omitempty"`
}

// CampaignExportData represents the structured data for export
type CampaignExportData struct {
	ExportInfo ExportInfo      `json:"export_info"`
	Entries    []EntryExport   `json:"entries"`
	Summary    CampaignSummary `json:"summary"`
}

type ExportInfo struct {
	ExportDate   time.Time `json:"export_date"`
	TotalRecords int       `json:"total_records"`
	DateRange    string    `json:"date_range,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	Format       string    `json:"format"`
}

type EntryExport struct {
	CampaignName string    `json:"campaign_name"`
	SessionID    string    `json:"session_id"`
	EntryID      string    `json:"entry_id"`
	Platform     string    `json:"platform"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Hashtags     string    `json:"hashtags"`
	PublishAt    time.Time `json:"publish_at"`
	Status       string    `json:"status"`
	PublishedAt  time.Time `json:"published_at,omitempty"`
	Error        string    `json:"error,omitempty"`
}

type CampaignSummary struct {
	TotalCampaigns   int            `json:"total_campaigns"`
	TotalEntries     int            `json:"total_entries"`
	PublishedEntries int            `json:"published_entries"`
	FailedEntries    int            `json:"failed_entries"`
	ByPlatform       map[string]int `json:"by_platform"`
	ByStatus         map[string]int `json:"by_status"`
}

// ExportService handles campaign export operations
type ExportService struct {
	campaignsCollection *mongo.Collection
}

func NewExportService(campaignsCollection *mongo.Collection) *ExportService {
	return &ExportService{campaignsCollection: campaignsCollection}
}

// BuildExportData fetches the matching campaigns and flattens them into
// per-entry export rows.
func (es *ExportService) BuildExportData(ctx context.Context, req *ExportRequest, userClaims *auth.Claims) (*CampaignExportData, error) {
	filter := es.buildQueryFilter(req, userClaims)

	opts := options.Find().SetSort(bson.D{primitive.E{Key: "launched_at", Value: -1}})
	if req.Limit > 0 {
		opts.SetLimit(int64(req.Limit))
	}

	cursor, err := es.campaignsCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaigns: %w", err)
	}
	defer cursor.Close(ctx)

	var campaigns []models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, fmt.Errorf("failed to decode campaigns: %w", err)
	}

	summary := CampaignSummary{
		TotalCampaigns: len(campaigns),
		ByPlatform:     make(map[string]int),
		ByStatus:       make(map[string]int),
	}

	var entries []EntryExport
	for _, c := range campaigns {
		for _, e := range c.Entries {
			draft := e.Content
			entries = append(entries, EntryExport{
				CampaignName: c.Name,
				SessionID:    c.SessionID,
				EntryID:      e.EntryID,
				Platform:     e.Platform,
				Title:        draft.Title,
				Description:  draft.Description,
				Hashtags:     strings.Join(draft.Hashtags, " "),
				PublishAt:    e.PublishAt,
				Status:       e.Status,
				PublishedAt:  e.PublishedAt,
				Error:        e.Error,
			})

			summary.TotalEntries++
			summary.ByPlatform[e.Platform]++
			summary.ByStatus[e.Status]++
			switch e.Status {
			case models.EntryStatusPublished:
				summary.PublishedEntries++
			case models.EntryStatusFailed:
				summary.FailedEntries++
			}
		}
	}

	var dateRange string
	if !req.DateFrom.IsZero() && !req.DateTo.IsZero() {
		dateRange = fmt.Sprintf("%s to %s",
			req.DateFrom.Format("2006-01-02"),
			req.DateTo.Format("2006-01-02"))
	} else if !req.DateFrom.IsZero() {
		dateRange = fmt.Sprintf("From %s", req.DateFrom.Format("2006-01-02"))
	} else if !req.DateTo.IsZero() {
		dateRange = fmt.Sprintf("Until %s", req.DateTo.Format("2006-01-02"))
	}

	return &CampaignExportData{
		ExportInfo: ExportInfo{
			ExportDate:   time.Now(),
			TotalRecords: len(entries),
			DateRange:    dateRange,
			UserID:       req.UserID,
			Format:       req.Format,
		},
		Entries: entries,
		Summary: summary,
	}, nil
}

func (es *ExportService) buildQueryFilter(req *ExportRequest, userClaims *auth.Claims) bson.M {
	filter := bson.M{}

	// Non-admins only see their own campaigns
	if userClaims.Role != models.RoleAdmin {
		filter["user_id"] = userClaims.UserID
	} else if req.UserID != "" {
		filter["user_id"] = req.UserID
	}

	if req.SessionID != "" {
		filter["session_id"] = req.SessionID
	}

	if !req.DateFrom.IsZero() || !req.DateTo.IsZero() {
		dateFilter := bson.M{}
		if !req.DateFrom.IsZero() {
			dateFilter["$gte"] = req.DateFrom
		}
		if !req.DateTo.IsZero() {
			dateFilter["$lte"] = req.DateTo
		}
		filter["launched_at"] = dateFilter
	}

	return filter
}

// StreamExport writes the export directly to the HTTP response.
func (es *ExportService) StreamExport(ctx *gin.Context, data *CampaignExportData, format string) error {
	switch format {
	case "json":
		jsonData, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}

		ctx.Header("Content-Disposition", "attachment; filename=campaign_export.json")
		ctx.Header("Content-Length", strconv.Itoa(len(jsonData)))
		ctx.Data(http.StatusOK, "application/json", jsonData)

	case "excel":
		buf, err := es.buildWorkbook(data)
		if err != nil {
			return err
		}

		ctx.Header("Content-Disposition", "attachment; filename=campaign_export.xlsx")
		ctx.Header("Content-Length", strconv.Itoa(buf.Len()))
		ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	return nil
}

func (es *ExportService) buildWorkbook(data *CampaignExportData) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Scheduled Posts"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Campaign", "Session ID", "Entry ID", "Platform", "Title",
		"Description", "Hashtags", "Publish At", "Status", "Published At", "Error",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, e := range data.Entries {
		row := rowIdx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.CampaignName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.SessionID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), e.EntryID)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Platform)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), e.Title)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), e.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), e.Hashtags)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), e.PublishAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), e.Status)
		if !e.PublishedAt.IsZero() {
			f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), e.PublishedAt.Format("2006-01-02 15:04"))
		}
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), e.Error)
	}

	for i := range headers {
		col := fmt.Sprintf("%c:%c", 'A'+i, 'A'+i)
		f.SetColWidth(sheetName, col, col, 18)
	}

	summarySheetName := "Summary"
	if _, err := f.NewSheet(summarySheetName); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	summaryData := [][]interface{}{
		{"Export Information", ""},
		{"Export Date", data.ExportInfo.ExportDate.Format("2006-01-02 15:04:05")},
		{"Total Records", data.ExportInfo.TotalRecords},
		{"Date Range", data.ExportInfo.DateRange},
		{"", ""},
		{"Summary Statistics", ""},
		{"Total Campaigns", data.Summary.TotalCampaigns},
		{"Total Entries", data.Summary.TotalEntries},
		{"Published Entries", data.Summary.PublishedEntries},
		{"Failed Entries", data.Summary.FailedEntries},
	}
	for i, row := range summaryData {
		for j, cell := range row {
			cellRef := fmt.Sprintf("%c%d", 'A'+j, i+1)
			f.SetCellValue(summarySheetName, cellRef, cell)
		}
	}

	row := len(summaryData) + 2
	f.SetCellValue(summarySheetName, fmt.Sprintf("A%d", row), "Entries by Platform")
	f.SetCellValue(summarySheetName, fmt.Sprintf("B%d", row), "Count")
	row++
	for platformID, count := range data.Summary.ByPlatform {
		f.SetCellValue(summarySheetName, fmt.Sprintf("A%d", row), platformID)
		f.SetCellValue(summarySheetName, fmt.Sprintf("B%d", row), count)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return &buf, nil
}
