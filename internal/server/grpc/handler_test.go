package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/dmitrijs2005/courseimage/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeUploader struct {
	gotCaller services.Caller
	gotReq    *models.UploadRequest
	res       *models.UploadResult
	err       error
}

func (f *fakeUploader) Upload(_ context.Context, caller services.Caller, req *models.UploadRequest) (*models.UploadResult, error) {
	f.gotCaller = caller
	f.gotReq = req
	return f.res, f.err
}

func callerCtx(id int64) context.Context {
	return context.WithValue(context.Background(), userIDKey, id)
}

func TestPing(t *testing.T) {
	s := newTestServer("secret")
	res, err := s.Ping(context.Background(), &api.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", res.Status)
}

func TestUploadCourseImage_Success(t *testing.T) {
	up := &fakeUploader{res: &models.UploadResult{
		ContextID: 27, Component: "course", FileArea: "overviewfiles", FilePath: "/", FileName: "a.png", URL: "http://x/a.png",
	}}
	s := NewGRPCServer("", nopLogger{}, up, api.DefaultRegistry(), "secret", api.DefaultMaxUploadBytes)

	res, err := s.UploadCourseImage(callerCtx(7), &api.UploadCourseImageRequest{
		Component: "user", FileArea: "draft", FileName: "a.png", FileContent: "AA==", CourseID: 5, ContextLevel: "user", InstanceID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, &api.UploadCourseImageResponse{
		ContextID: 27, Component: "course", FileArea: "overviewfiles", FilePath: "/", FileName: "a.png", URL: "http://x/a.png",
	}, res)
	assert.Equal(t, int64(7), up.gotCaller.UserID)
	assert.Equal(t, int64(5), up.gotReq.CourseID)
	assert.Equal(t, "user", up.gotReq.ContextLevel)
	assert.Equal(t, int64(7), up.gotReq.InstanceID)
}

func TestUploadCourseImage_NoCaller(t *testing.T) {
	s := newTestServer("secret")
	_, err := s.UploadCourseImage(context.Background(), &api.UploadCourseImageRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestUploadCourseImage_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"validation", common.ErrNoFile, codes.InvalidArgument},
		{"policy", common.ErrDraftOnly, codes.PermissionDenied},
		{"conflict", common.ErrFileExists, codes.AlreadyExists},
		{"busy", common.ErrResourceBusy, codes.Aborted},
		{"not found", common.ErrCourseNotFound, codes.NotFound},
		{"internal", errors.New("db password is hunter2"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewGRPCServer("", nopLogger{}, &fakeUploader{err: tt.err}, api.DefaultRegistry(), "secret", api.DefaultMaxUploadBytes)
			_, err := s.UploadCourseImage(callerCtx(7), &api.UploadCourseImageRequest{CourseID: 5})
			assert.Equal(t, tt.code, status.Code(err))
			assert.NotContains(t, status.Convert(err).Message(), "hunter2")
		})
	}
}
