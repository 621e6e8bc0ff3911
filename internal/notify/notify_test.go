package notify_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/apptest"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/notify"
	"github.com/joddb/shopfloor/internal/storage/storagemock"
)

func TestBuilderToRole(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	users := []model.User{
		{ID: "u-qa", Username: "qa", Role: model.RoleQuality, Active: true},
		{ID: "u-qa-old", Username: "qa-old", Role: model.RoleQuality, Active: false},
		{ID: "u-qa2", Username: "qa2", Role: model.RoleQuality, Active: true},
		{ID: "u-tech", Username: "tech", Role: model.RoleTechnician, Active: true},
	}
	payload := map[string]string{"task_id": "task-1"}

	tests := map[string]struct {
		mock   func(m *storagemock.MockRepository)
		role   model.Role
		expIDs []string
		expErr bool
	}{
		"Every active user with the role should be notified.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListUsers", mock.Anything).Once().Return(users, nil)
			},
			role:   model.RoleQuality,
			expIDs: []string{"u-qa", "u-qa2"},
		},
		"A role without users should return no notifications.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListUsers", mock.Anything).Once().Return(users, nil)
			},
			role:   model.RoleTester,
			expIDs: []string{},
		},
		"A repository error should propagate.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListUsers", mock.Anything).Once().Return(nil, fmt.Errorf("database error"))
			},
			role:   model.RoleQuality,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := &storagemock.MockRepository{}
			test.mock(m)

			b := notify.Builder{Users: m, IDGen: apptest.SeqID("n"), Now: now}
			ns, err := b.ToRole(context.Background(), test.role, model.NotificationTaskReadyForInspection, "Task task-1 is ready", payload)

			if test.expErr {
				assert.Error(err)
			} else {
				require.NoError(err)
				gotIDs := []string{}
				for i, n := range ns {
					gotIDs = append(gotIDs, n.UserID)
					assert.Equal(fmt.Sprintf("n-%d", i+1), n.ID)
					assert.Equal(model.NotificationTaskReadyForInspection, n.Type)
					assert.Equal("Task task-1 is ready", n.Message)
					assert.Equal(payload, n.Payload)
					assert.Equal(now, n.CreatedAt)
					assert.False(n.Read)
				}
				assert.Equal(test.expIDs, gotIDs)
			}

			m.AssertExpectations(t)
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := map[string]struct {
		s   string
		n   int
		exp string
	}{
		"A short comment should be kept.": {
			s:   "loose crimp",
			n:   50,
			exp: "loose crimp",
		},
		"A comment at the limit should be kept.": {
			s:   "12345",
			n:   5,
			exp: "12345",
		},
		"A long comment should be cut.": {
			s:   "123456",
			n:   5,
			exp: "12345...",
		},
		"Multibyte comments should be cut by characters.": {
			s:   "ñandú dañado",
			n:   5,
			exp: "ñandú...",
		},
		"An empty comment should be kept.": {
			s:   "",
			n:   5,
			exp: "",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, notify.Truncate(test.s, test.n))
		})
	}
}
