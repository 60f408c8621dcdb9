package api

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName = "courseimage.v1.CourseImageService"

	PingMethod              = "/" + ServiceName + "/Ping"
	UploadCourseImageMethod = "/" + ServiceName + "/UploadCourseImage"
)

// CourseImageServiceServer is implemented by the gRPC transport.
type CourseImageServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	UploadCourseImage(context.Context, *UploadCourseImageRequest) (*UploadCourseImageResponse, error)
}

func RegisterCourseImageServiceServer(s grpc.ServiceRegistrar, srv CourseImageServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CourseImageServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PingMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CourseImageServiceServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func uploadCourseImageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UploadCourseImageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CourseImageServiceServer).UploadCourseImage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: UploadCourseImageMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CourseImageServiceServer).UploadCourseImage(ctx, req.(*UploadCourseImageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes CourseImageService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CourseImageServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "UploadCourseImage", Handler: uploadCourseImageHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "courseimage/v1/service",
}

// CourseImageServiceClient is the client side of CourseImageService.
type CourseImageServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	UploadCourseImage(ctx context.Context, in *UploadCourseImageRequest, opts ...grpc.CallOption) (*UploadCourseImageResponse, error)
}

type courseImageServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCourseImageServiceClient(cc grpc.ClientConnInterface) CourseImageServiceClient {
	return &courseImageServiceClient{cc: cc}
}

func (c *courseImageServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, PingMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *courseImageServiceClient) UploadCourseImage(ctx context.Context, in *UploadCourseImageRequest, opts ...grpc.CallOption) (*UploadCourseImageResponse, error) {
	out := new(UploadCourseImageResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, UploadCourseImageMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
