package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/kubecrud/items-api/internal/config"
	"github.com/kubecrud/items-api/internal/startup"
	"github.com/stretchr/testify/require"
)

func TestOnStartupExitPolicies(t *testing.T) {
	exhausted := errors.Join(startup.ErrExhausted, errors.New("dial tcp: connection refused"))

	cases := []struct {
		name       string
		policy     string
		err        error
		wantCancel bool
	}{
		{"exit policy stops the process", config.OnExhaustedExit, exhausted, true},
		{"degrade policy keeps serving", config.OnExhaustedDegrade, exhausted, false},
		{"success", config.OnExhaustedExit, nil, false},
		{"shutdown during startup", config.OnExhaustedExit, context.Canceled, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			var failed atomic.Bool

			onStartupExit(tc.policy, cancel, &failed)(tc.err)

			require.Equal(t, tc.wantCancel, ctx.Err() != nil)
			require.Equal(t, tc.wantCancel, failed.Load())
		})
	}
}
