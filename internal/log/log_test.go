package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joddb/shopfloor/internal/log"
)

func TestCtxValues(t *testing.T) {
	tests := map[string]struct {
		ctx       func() context.Context
		expValues log.Kv
	}{
		"An empty context should not have values.": {
			ctx:       context.Background,
			expValues: log.Kv{},
		},

		"Values set on the context should be returned.": {
			ctx: func() context.Context {
				return log.CtxWithValues(context.Background(), log.Kv{"task": "t1"})
			},
			expValues: log.Kv{"task": "t1"},
		},

		"Nested values should be merged and override the parent ones.": {
			ctx: func() context.Context {
				ctx := log.CtxWithValues(context.Background(), log.Kv{"task": "t1", "user": "ana"})
				return log.CtxWithValues(ctx, log.Kv{"task": "t2"})
			},
			expValues: log.Kv{"task": "t2", "user": "ana"},
		},

		"The noop logger should not set values on the context.": {
			ctx: func() context.Context {
				return log.Noop.SetValuesOnCtx(context.Background(), log.Kv{"task": "t1"})
			},
			expValues: log.Kv{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expValues, log.ValuesFromCtx(test.ctx()))
		})
	}
}
