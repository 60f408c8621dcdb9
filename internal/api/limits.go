package api

import (
	"math"

	"google.golang.org/grpc"
)

// DefaultMaxUploadBytes is the decoded image limit a server runs with unless
// configured otherwise.
const DefaultMaxUploadBytes = 10 << 20

// messageOverheadBytes covers the request fields around the image content
// and the JSON framing.
const messageOverheadBytes = 64 << 10

// MaxMessageSize is the largest gRPC message needed to carry an image of up
// to maxUploadBytes decoded bytes. Zero or less means no limit.
func MaxMessageSize(maxUploadBytes int64) int {
	if maxUploadBytes <= 0 {
		return math.MaxInt32
	}
	n := 4*((maxUploadBytes+2)/3) + messageOverheadBytes
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// WithMaxUploadBytes sizes the client's send and receive limits for images
// of up to maxUploadBytes.
func WithMaxUploadBytes(maxUploadBytes int64) grpc.DialOption {
	n := MaxMessageSize(maxUploadBytes)
	return grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(n), grpc.MaxCallRecvMsgSize(n))
}
