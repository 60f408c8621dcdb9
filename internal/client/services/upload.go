// Package services contains application services for the upload client.
package services

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/api"
)

// CourseImageClient is the slice of api.Client the upload service needs.
type CourseImageClient interface {
	Ping(ctx context.Context) (string, error)
	UploadCourseImage(ctx context.Context, req *api.UploadCourseImageRequest) (*api.UploadCourseImageResponse, error)
}

// UploadService turns a local image into an upload call.
type UploadService struct {
	client  CourseImageClient
	timeout time.Duration
}

// NewUploadService binds the service to a client. A zero timeout means calls
// only stop when ctx does.
func NewUploadService(client CourseImageClient, timeout time.Duration) *UploadService {
	return &UploadService{client: client, timeout: timeout}
}

// UploadFile reads the image at path and makes it the overview image of the
// course. The file is staged in a fresh draft item of the caller's user
// context.
func (s *UploadService) UploadFile(ctx context.Context, path string, courseID int64) (*api.UploadCourseImageResponse, error) {
	if courseID <= 0 {
		return nil, errors.Errorf("invalid course id %d", courseID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.UploadCourseImage(ctx, &api.UploadCourseImageRequest{
		Component:   "user",
		FileArea:    "draft",
		FilePath:    "/",
		FileName:    filepath.Base(path),
		FileContent: base64.StdEncoding.EncodeToString(data),
		CourseID:    courseID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "upload course image")
	}

	return res, nil
}

// Ping checks that the server is reachable.
func (s *UploadService) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.Ping(ctx); err != nil {
		return errors.Wrap(err, "ping")
	}
	return nil
}

func (s *UploadService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
