package grpc

import (
	"context"

	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) UploadCourseImage(ctx context.Context, req *api.UploadCourseImageRequest) (*api.UploadCourseImageResponse, error) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	s.logger.Info(ctx, "Upload course image request", "user_id", caller.UserID, "course_id", req.CourseID)

	res, err := s.uploads.Upload(ctx, caller, &models.UploadRequest{
		ContextID:    req.ContextID,
		Component:    req.Component,
		FileArea:     req.FileArea,
		ItemID:       req.ItemID,
		FilePath:     req.FilePath,
		FileName:     req.FileName,
		FileContent:  req.FileContent,
		ContextLevel: req.ContextLevel,
		InstanceID:   req.InstanceID,
		CourseID:     req.CourseID,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.UploadCourseImageResponse{
		ContextID: res.ContextID,
		Component: res.Component,
		FileArea:  res.FileArea,
		ItemID:    res.ItemID,
		FilePath:  res.FilePath,
		FileName:  res.FileName,
		URL:       res.URL,
	}, nil
}

// toStatus maps a service error onto a gRPC status and reports the error
// code in the trailer. Internal details never leave the server.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	typed, ok := common.AsError(err)
	if !ok {
		s.logger.Error(ctx, err.Error())
		return status.Error(codes.Internal, "internal error")
	}

	_ = grpc.SetTrailer(ctx, metadata.Pairs(api.ErrorCodeKey, typed.Code))

	return status.Error(grpcCode(typed), typed.Error())
}

func grpcCode(e *common.Error) codes.Code {
	switch e.Kind {
	case common.KindValidation:
		return codes.InvalidArgument
	case common.KindPolicy:
		return codes.PermissionDenied
	case common.KindConflict:
		if e.Code == common.ErrResourceBusy.Code {
			return codes.Aborted
		}
		return codes.AlreadyExists
	case common.KindNotFound:
		return codes.NotFound
	default:
		return codes.Internal
	}
}
