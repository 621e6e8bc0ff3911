package joborderlist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/joborderlist"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage/storagemock"
)

func TestService_Run(t *testing.T) {
	orders := []model.JobOrder{
		{ID: "jo-1", OrderCode: "JO-1", Status: model.JobOrderStatusInProgress},
		{ID: "jo-2", OrderCode: "JO-2", Status: model.JobOrderStatusArchived},
	}

	tests := map[string]struct {
		req       joborderlist.Request
		expOrders []model.JobOrder
	}{
		"archived job orders should be hidden by default": {
			req:       joborderlist.Request{},
			expOrders: orders[:1],
		},
		"archived job orders should be listed when requested": {
			req:       joborderlist.Request{IncludeArchived: true},
			expOrders: orders,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			m := &storagemock.MockRepository{}
			m.On("ListJobOrders", mock.Anything).Once().Return(orders, nil)

			svc, err := joborderlist.NewService(joborderlist.ServiceConfig{Repository: m})
			require.NoError(err)

			got, err := svc.Run(context.Background(), test.req)
			require.NoError(err)
			assert.Equal(t, test.expOrders, got)

			m.AssertExpectations(t)
		})
	}
}
