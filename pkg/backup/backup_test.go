package backup

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileBackupService(t *testing.T) *BackupService {
	t.Helper()
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return NewBackupService(storage, "1.0.0")
}

func TestCreateAndRestoreBackup(t *testing.T) {
	service := newFileBackupService(t)
	ctx := context.Background()

	data := &BackupData{
		Streams: map[string]json.RawMessage{
			"1": json.RawMessage(`{"id":1,"sender":"alice","receiver":"bob","total_amount":1000}`),
			"2": json.RawMessage(`{"id":2,"sender":"carol","receiver":"dave","total_amount":50}`),
		},
		Metadata: map[string]interface{}{
			"stream_count": 2,
		},
	}

	name, err := service.CreateBackup(ctx, data)
	require.NoError(t, err)
	assert.Contains(t, name, "backup-")

	restored, err := service.RestoreBackup(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", restored.Version)
	assert.Len(t, restored.Streams, 2)
	assert.JSONEq(t, string(data.Streams["1"]), string(restored.Streams["1"]))
}

func TestListBackups(t *testing.T) {
	service := newFileBackupService(t)
	ctx := context.Background()

	names, err := service.ListBackups(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = service.CreateBackup(ctx, &BackupData{})
	require.NoError(t, err)

	names, err = service.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestDeleteBackup(t *testing.T) {
	service := newFileBackupService(t)
	ctx := context.Background()

	name, err := service.CreateBackup(ctx, &BackupData{})
	require.NoError(t, err)
	require.NoError(t, service.DeleteBackup(ctx, name))

	names, err := service.ListBackups(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = service.RestoreBackup(ctx, name)
	assert.Error(t, err)
}
