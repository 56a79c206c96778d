package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Name:             "test",
		Timeout:          20 * time.Millisecond,
		FailureThreshold: 3,
	}
}

func TestExecute_PassesThroughWhenClosed(t *testing.T) {
	cb := New(testConfig())

	err := cb.Execute(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := New(testConfig())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		err := cb.Execute(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(context.Background(), func(context.Context) error {
		t.Fatal("must not run while open")
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestExecute_SuccessResetsFailureCount(t *testing.T) {
	cb := New(testConfig())
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		cb.Execute(context.Background(), func(context.Context) error { return boom })
	}
	require.NoError(t, cb.Execute(context.Background(), func(context.Context) error { return nil }))

	for i := 0; i < 2; i++ {
		cb.Execute(context.Background(), func(context.Context) error { return boom })
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_HalfOpenProbeClosesOnSuccess(t *testing.T) {
	cb := New(testConfig())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		cb.Execute(context.Background(), func(context.Context) error { return boom })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(25 * time.Millisecond)

	require.NoError(t, cb.Execute(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_HalfOpenProbeReopensOnFailure(t *testing.T) {
	cb := New(testConfig())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		cb.Execute(context.Background(), func(context.Context) error { return boom })
	}
	time.Sleep(25 * time.Millisecond)

	cb.Execute(context.Background(), func(context.Context) error { return boom })
	assert.Equal(t, StateOpen, cb.State())
}

func TestExecute_IsFailureFilter(t *testing.T) {
	quota := errors.New("quota exceeded")
	cfg := testConfig()
	cfg.IsFailure = func(err error) bool { return err != nil && !errors.Is(err, quota) }
	cb := New(cfg)

	for i := 0; i < 5; i++ {
		cb.Execute(context.Background(), func(context.Context) error { return quota })
	}

	assert.Equal(t, StateClosed, cb.State())
}
