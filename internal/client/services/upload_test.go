package services

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	PingErr error

	UploadRes    *api.UploadCourseImageResponse
	UploadErr    error
	gotReq       *api.UploadCourseImageRequest
	gotDeadline  bool
	uploadCalled bool
}

func (f *fakeClient) Ping(ctx context.Context) (string, error) {
	_, f.gotDeadline = ctx.Deadline()
	if f.PingErr != nil {
		return "", f.PingErr
	}
	return "OK", nil
}

func (f *fakeClient) UploadCourseImage(ctx context.Context, req *api.UploadCourseImageRequest) (*api.UploadCourseImageResponse, error) {
	f.uploadCalled = true
	f.gotReq = req
	_, f.gotDeadline = ctx.Deadline()
	return f.UploadRes, f.UploadErr
}

func writeImage(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUploadFile_Success(t *testing.T) {
	fc := &fakeClient{UploadRes: &api.UploadCourseImageResponse{ContextID: 27, FileName: "cover.png"}}
	svc := NewUploadService(fc, time.Minute)

	path := writeImage(t, "cover.png", []byte("png bytes"))
	res, err := svc.UploadFile(context.Background(), path, 5)
	require.NoError(t, err)

	assert.Equal(t, int64(27), res.ContextID)
	assert.Equal(t, &api.UploadCourseImageRequest{
		Component:   "user",
		FileArea:    "draft",
		FilePath:    "/",
		FileName:    "cover.png",
		FileContent: base64.StdEncoding.EncodeToString([]byte("png bytes")),
		CourseID:    5,
	}, fc.gotReq)
	assert.True(t, fc.gotDeadline)
}

func TestUploadFile_NoTimeout(t *testing.T) {
	fc := &fakeClient{UploadRes: &api.UploadCourseImageResponse{}}
	svc := NewUploadService(fc, 0)

	_, err := svc.UploadFile(context.Background(), writeImage(t, "a.jpg", []byte("x")), 5)
	require.NoError(t, err)
	assert.False(t, fc.gotDeadline)
}

func TestUploadFile_Errors(t *testing.T) {
	t.Run("bad course id", func(t *testing.T) {
		fc := &fakeClient{}
		_, err := NewUploadService(fc, 0).UploadFile(context.Background(), "whatever.png", 0)
		require.Error(t, err)
		assert.False(t, fc.uploadCalled)
	})

	t.Run("missing file", func(t *testing.T) {
		fc := &fakeClient{}
		_, err := NewUploadService(fc, 0).UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope.png"), 5)
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.False(t, fc.uploadCalled)
	})

	t.Run("server error keeps its identity", func(t *testing.T) {
		fc := &fakeClient{UploadErr: common.ErrNoPermissions}
		_, err := NewUploadService(fc, 0).UploadFile(context.Background(), writeImage(t, "a.png", []byte("x")), 5)
		require.ErrorIs(t, err, common.ErrNoPermissions)
	})
}

func TestPing(t *testing.T) {
	fc := &fakeClient{}
	require.NoError(t, NewUploadService(fc, time.Second).Ping(context.Background()))

	fc.PingErr = errors.New("connection refused")
	require.Error(t, NewUploadService(fc, time.Second).Ping(context.Background()))
}
