package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rentdesk/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackupCreatesFile(t *testing.T) {
	db := setupTestDB(t)
	seedTestShop(t, db)

	dbPath := filepath.Join(t.TempDir(), "source.db")
	logger := zerolog.New(zerolog.NewConsoleWriter())
	src, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer src.Close()

	backupDir := t.TempDir()
	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: backupDir,
	}, &logger)

	require.NoError(t, svc.PerformBackup())

	files, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), "backup_")
}

func TestCleanupOldBackups(t *testing.T) {
	backupDir := t.TempDir()
	oldFile := filepath.Join(backupDir, "backup_old.db")
	require.NoError(t, os.WriteFile(oldFile, []byte("stale"), 0o644))
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	freshFile := filepath.Join(backupDir, "backup_fresh.db")
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))

	logger := zerolog.New(zerolog.NewConsoleWriter())
	svc := NewBackupService("unused.db", config.BackupConfig{
		Enabled:       true,
		StoragePath:   backupDir,
		RetentionDays: 7,
	}, &logger)

	svc.CleanupOldBackups()

	files, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "backup_fresh.db", files[0].Name())
}
