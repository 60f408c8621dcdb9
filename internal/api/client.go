package api

import (
	"context"
	"fmt"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrorCodeKey is the trailer carrying the machine-stable error code of a
// failed call.
const ErrorCodeKey = "ws-errorcode"

var ErrUnavailable = errors.New("service unavailable")

// Client is a small gRPC client for CourseImageService that attaches the
// access token to every call.
type Client struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      CourseImageServiceClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.accessToken != "" {
		ctx = withAccessToken(ctx, c.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewClient connects to endpointURL. Calls are sized for
// DefaultMaxUploadBytes images. Extra dial options are appended, which lets
// tests plug in a bufconn dialer or a different WithMaxUploadBytes.
func NewClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*Client, error) {
	c := &Client{endpointURL: endpointURL, accessToken: accessToken}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		WithMaxUploadBytes(DefaultMaxUploadBytes),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = NewCourseImageServiceClient(conn)
	return c, nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	var trailer metadata.MD
	res, err := c.client.Ping(ctx, &PingRequest{}, grpc.Trailer(&trailer))
	if err != nil {
		return "", mapError(err, trailer)
	}
	return res.Status, nil
}

func (c *Client) UploadCourseImage(ctx context.Context, req *UploadCourseImageRequest) (*UploadCourseImageResponse, error) {
	var trailer metadata.MD
	res, err := c.client.UploadCourseImage(ctx, req, grpc.Trailer(&trailer))
	if err != nil {
		return nil, mapError(err, trailer)
	}
	return res, nil
}

// mapError turns a gRPC status back into the typed error the server raised.
func mapError(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var code string
	if v := trailer.Get(ErrorCodeKey); len(v) > 0 {
		code = v[0]
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return common.NewError(common.KindValidation, code, st.Message())
	case codes.PermissionDenied:
		return common.NewError(common.KindPolicy, code, st.Message())
	case codes.AlreadyExists, codes.Aborted:
		return common.NewError(common.KindConflict, code, st.Message())
	case codes.NotFound:
		return common.NewError(common.KindNotFound, code, st.Message())
	case codes.ResourceExhausted:
		// The transport refused the message before the service saw it.
		return common.ErrMaxBytes.WithMessage("%s", st.Message())
	case codes.Unauthenticated:
		return errors.Wrap(common.ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
