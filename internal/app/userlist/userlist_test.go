package userlist_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/userlist"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage/storagemock"
)

func TestService_Run(t *testing.T) {
	quality := model.RoleQuality
	users := []model.User{
		{ID: "u1", Username: "alice", Role: model.RoleTechnician},
		{ID: "u2", Username: "bob", Role: model.RoleQuality},
	}

	tests := map[string]struct {
		mock     func(m *storagemock.MockRepository)
		req      userlist.Request
		expUsers []model.User
		expErr   bool
	}{
		"list all users without filter": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListUsers", mock.Anything).Once().Return(users, nil)
			},
			expUsers: users,
		},
		"filter by role": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListUsers", mock.Anything).Once().Return(users, nil)
			},
			req:      userlist.Request{RoleFilter: &quality},
			expUsers: []model.User{users[1]},
		},
		"repository error should propagate": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListUsers", mock.Anything).Once().Return(nil, fmt.Errorf("database error"))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := &storagemock.MockRepository{}
			test.mock(m)

			svc, err := userlist.NewService(userlist.ServiceConfig{Repository: m})
			require.NoError(err)

			got, err := svc.Run(context.Background(), test.req)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expUsers, got)
			}

			m.AssertExpectations(t)
		})
	}
}
