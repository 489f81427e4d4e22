package madtsql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMemoryLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int64
		want int64
	}{
		{name: "default for zero", in: 0, want: DefaultMemoryLimitMB},
		{name: "default for negative", in: -5, want: DefaultMemoryLimitMB},
		{name: "custom", in: 1024, want: 1024},
		{name: "capped", in: maxReasonableMemoryLimit * 2, want: maxReasonableMemoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			limit := NewMemoryLimit(tt.in)
			assert.Equal(t, tt.want, limit.LimitMB())
			assert.True(t, limit.IsEnabled())
		})
	}
}

func TestMemoryLimit_StatusFor(t *testing.T) {
	t.Parallel()

	limit := NewMemoryLimit(100)
	assert.Equal(t, MemoryStatusOK, limit.statusFor(10))
	assert.Equal(t, MemoryStatusWarning, limit.statusFor(80))
	assert.Equal(t, MemoryStatusExceeded, limit.statusFor(100))
	assert.Equal(t, MemoryStatusExceeded, limit.statusFor(250))
}

func TestMemoryLimit_Disable(t *testing.T) {
	t.Parallel()

	limit := NewMemoryLimit(1)
	limit.Disable()
	assert.False(t, limit.IsEnabled())
	assert.Equal(t, MemoryStatusOK, limit.CheckMemoryUsage())
}

func TestMemoryLimit_CreateMemoryError(t *testing.T) {
	t.Parallel()

	err := NewMemoryLimit(64).CreateMemoryError("loading sales.csv")
	assert.True(t, errors.Is(err, ErrMemoryLimit))
	assert.Contains(t, err.Error(), "loading sales.csv")
}

func TestMemoryStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OK", MemoryStatusOK.String())
	assert.Equal(t, "WARNING", MemoryStatusWarning.String())
	assert.Equal(t, "EXCEEDED", MemoryStatusExceeded.String())
	assert.Equal(t, "UNKNOWN", MemoryStatus(42).String())
}
