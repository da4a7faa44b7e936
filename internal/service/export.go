package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rentdesk/internal/domain"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ExportService renders a month of bookings as an xlsx grid: one row per
// item, one column per day, booked/total in each cell.
type ExportService struct {
	repo   domain.Repository
	path   string
	logger *zerolog.Logger
}

func NewExportService(repo domain.Repository, path string, logger *zerolog.Logger) *ExportService {
	return &ExportService{repo: repo, path: path, logger: logger}
}

const scheduleSheet = "Schedule"

func (s *ExportService) ExportMonth(ctx context.Context, shopID string, month time.Time) (string, error) {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	items, err := s.repo.GetActiveItems(ctx, shopID)
	if err != nil {
		return "", fmt.Errorf("error getting active items: %v", err)
	}
	bookings, err := s.repo.ListBookingsForRange(ctx, shopID, monthStart, monthEnd)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(scheduleSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(scheduleSheet, "A1", fmt.Sprintf("Schedule: %s", monthStart.Format("January 2006")))

	days := writeDayHeaders(f, monthStart, monthEnd)
	writeItemRows(f, items)
	s.writeScheduleCells(f, items, bookings, monthStart, days)

	_ = f.SetColWidth(scheduleSheet, "A", "A", 25)

	lastCol, _ := excelize.CoordinatesToCellName(days+1, 1)
	_ = f.MergeCell(scheduleSheet, "A1", lastCol)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(scheduleSheet, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	filePath := filepath.Join(s.path, fmt.Sprintf("schedule_%s_%s.xlsx", shopID, monthStart.Format("2006-01")))
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	s.logger.Info().Str("file_path", filePath).Msg("schedule export created")
	return filePath, nil
}

func writeDayHeaders(f *excelize.File, monthStart, monthEnd time.Time) int {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	days := 0
	for day := monthStart; day.Before(monthEnd); day = day.AddDate(0, 0, 1) {
		days++
		cell, _ := excelize.CoordinatesToCellName(days+1, 2)
		_ = f.SetCellValue(scheduleSheet, cell, day.Format("02.01"))
		_ = f.SetCellStyle(scheduleSheet, cell, cell, headerStyle)
	}
	return days
}

func writeItemRows(f *excelize.File, items []*models.Item) {
	itemStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, item := range items {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		_ = f.SetCellValue(scheduleSheet, cell, fmt.Sprintf("%s (%d)", item.Name, item.Quantity))
		_ = f.SetCellStyle(scheduleSheet, cell, cell, itemStyle)
	}
}

func (s *ExportService) writeScheduleCells(f *excelize.File, items []*models.Item, bookings []*models.Booking, monthStart time.Time, days int) {
	for i, item := range items {
		for d := 0; d < days; d++ {
			dayStart := monthStart.AddDate(0, 0, d)
			dayEnd := dayStart.AddDate(0, 0, 1)

			var booked int64
			hasPending := false
			var lines string
			for _, booking := range bookings {
				if !models.Overlaps(booking.StartAt, booking.EndAt, dayStart, dayEnd) {
					continue
				}
				for _, line := range booking.Items {
					if line.ItemID != item.ID {
						continue
					}
					if models.StatusConsumesInventory(booking.Status) {
						booked += line.Quantity
					}
					if booking.Status == models.StatusPending {
						hasPending = true
					}
					lines += fmt.Sprintf("%s x%d (%s)\n", booking.CustomerName, line.Quantity, booking.Status)
				}
			}

			cell, _ := excelize.CoordinatesToCellName(d+2, i+3)
			if lines == "" {
				_ = f.SetCellValue(scheduleSheet, cell, fmt.Sprintf("free %d/%d", item.Quantity, item.Quantity))
			} else {
				_ = f.SetCellValue(scheduleSheet, cell, fmt.Sprintf("%sbooked: %d/%d", lines, booked, item.Quantity))
			}

			if styleID, err := scheduleCellStyle(f, booked, item.Quantity, hasPending, lines != ""); err == nil {
				_ = f.SetCellStyle(scheduleSheet, cell, cell, styleID)
			}
		}
	}
}

func scheduleCellStyle(f *excelize.File, booked, total int64, hasPending, hasBookings bool) (int, error) {
	color := "#FFFFFF"
	switch {
	case !hasBookings:
	case booked >= total:
		color = "#FFC7CE"
	case hasPending:
		color = "#FFEB9C"
	default:
		color = "#C6EFCE"
	}
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "top",
			WrapText:   true,
		},
	})
}
