package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rentdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportMonthWritesGrid(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	dir := t.TempDir()
	svc := NewExportService(repo, dir, &logger)

	monthStart := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	items := []*models.Item{
		{ID: 1, ShopID: "demo-shop", Name: "Sony A7SIII", Quantity: 2},
	}
	bookings := []*models.Booking{
		{
			ID: 1, Reference: "ref-1", ShopID: "demo-shop",
			CustomerName: "Ada Lovelace",
			StartAt:      time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
			EndAt:        time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC),
			Status:       models.StatusConfirmed,
			Items:        []models.BookingItem{{ItemID: 1, ItemName: "Sony A7SIII", Quantity: 1}},
		},
	}

	repo.On("GetActiveItems", mock.Anything, "demo-shop").Return(items, nil)
	repo.On("ListBookingsForRange", mock.Anything, "demo-shop", monthStart, monthEnd).Return(bookings, nil)

	path, err := svc.ExportMonth(context.Background(), "demo-shop", monthStart)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "schedule_demo-shop_2026-01.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(scheduleSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Schedule: January 2026", title)

	itemCell, err := f.GetCellValue(scheduleSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Sony A7SIII (2)", itemCell)

	// Jan 5 is column F (B=1st). The booking covers it.
	booked, err := f.GetCellValue(scheduleSheet, "F3")
	require.NoError(t, err)
	assert.Contains(t, booked, "Ada Lovelace x1 (confirmed)")
	assert.Contains(t, booked, "booked: 1/2")

	// Jan 10 is free.
	free, err := f.GetCellValue(scheduleSheet, "K3")
	require.NoError(t, err)
	assert.Contains(t, free, "free 2/2")
}
