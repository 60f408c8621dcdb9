package api

import (
	"encoding/base64"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxMessageSize(t *testing.T) {
	for _, n := range []int64{1, 1000, 5 << 20, DefaultMaxUploadBytes} {
		encoded := base64.StdEncoding.EncodedLen(int(n))
		got := MaxMessageSize(n)
		assert.Equal(t, encoded+messageOverheadBytes, got, "size %d", n)
	}

	// grpc-go refuses anything past 4 MiB by default; the default upload
	// limit must lift that.
	assert.Greater(t, MaxMessageSize(DefaultMaxUploadBytes), 4<<20)

	assert.Equal(t, math.MaxInt32, MaxMessageSize(0))
	assert.Equal(t, math.MaxInt32, MaxMessageSize(-1))
	assert.Equal(t, math.MaxInt32, MaxMessageSize(math.MaxInt64/8))
}
