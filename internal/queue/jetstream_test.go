package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAckWaitFor(t *testing.T) {
	tests := []struct {
		name         string
		drainTimeout time.Duration
		want         time.Duration
	}{
		{
			name:         "short drain keeps the floor",
			drainTimeout: 10 * time.Second,
			want:         30 * time.Second,
		},
		{
			name:         "default drain keeps the floor",
			drainTimeout: 25 * time.Second,
			want:         30 * time.Second,
		},
		{
			name:         "long drain extends the ack wait",
			drainTimeout: 60 * time.Second,
			want:         65 * time.Second,
		},
		{
			name:         "zero drain keeps the floor",
			drainTimeout: 0,
			want:         30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ackWaitFor(tt.drainTimeout))
		})
	}
}
