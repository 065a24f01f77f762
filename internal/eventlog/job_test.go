package eventlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCleanupJob_Process(t *testing.T) {
	tests := []struct {
		name          string
		configured    int
		wantRetention int
		deleted       int64
		repoErr       error
	}{
		{"configured retention", 10, 10, 100, nil},
		{"zero falls back to default", 0, DefaultRetentionDays, 0, nil},
		{"negative falls back to default", -1, DefaultRetentionDays, 0, nil},
		{"repository error", 7, 7, 0, errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			mockRepo.On("CleanupOldEvents", mock.Anything, tt.wantRetention).Return(tt.deleted, tt.repoErr)

			job := NewCleanupJob(NewService(mockRepo), tt.configured)
			assert.Equal(t, CleanupJobName, job.Name())

			err := job.Process(context.Background())
			if tt.repoErr != nil {
				assert.ErrorIs(t, err, tt.repoErr)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
