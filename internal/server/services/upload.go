package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/dbx"
	"github.com/dmitrijs2005/courseimage/internal/filex"
	"github.com/dmitrijs2005/courseimage/internal/logging"
	"github.com/dmitrijs2005/courseimage/internal/server/config"
	"github.com/dmitrijs2005/courseimage/internal/server/filestore"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/repomanager"
)

// UploadService implements local_ws_subir_imagen_curso: it stages a base64
// image as a draft file and moves it into the course overview image slot.
type UploadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     *filestore.Storage
	guard       *Guard
	allocator   *DraftItemAllocator
	scratch     *filex.ScratchDir
	logger      logging.Logger

	// capabilities the caller needs in the course context.
	capabilities []string
	maxBytes     int64
	lockTimeout  time.Duration

	now      func() time.Time
	restrict func(path string) error
	lock     func(ctx context.Context, db dbx.DBTX, key int64, timeout time.Duration) error
}

func NewUploadService(db *sql.DB, m repomanager.RepositoryManager, storage *filestore.Storage,
	scratch *filex.ScratchDir, logger logging.Logger, cfg *config.Config) *UploadService {
	fn, _ := api.DefaultRegistry().Lookup(api.UploadCourseImageFunction)

	return &UploadService{
		db:           db,
		repomanager:  m,
		storage:      storage,
		guard:        NewGuard(m),
		allocator:    NewDraftItemAllocator(m),
		scratch:      scratch,
		logger:       logger.With("module", "upload"),
		capabilities: fn.Capabilities,
		maxBytes:     cfg.MaxUploadBytes,
		lockTimeout:  cfg.CourseLockTimeout,
		now:          time.Now,
		restrict:     filex.Restrict,
		lock:         dbx.TryAdvisoryXactLock,
	}
}

// Upload runs the whole call. Everything between the existence check and the
// removal of the draft happens in one transaction holding the course lock,
// so a failure leaves the previous overview image in place.
func (s *UploadService) Upload(ctx context.Context, caller Caller, req *models.UploadRequest) (*models.UploadResult, error) {
	log := s.logger.With("user_id", caller.UserID, "course_id", req.CourseID)

	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, log, err)
	}

	data, err := decodeContent(req.FileContent)
	if err != nil {
		return nil, s.fail(ctx, log, err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, s.fail(ctx, log, common.ErrMaxBytes.WithMessage("file is too large (%d > %d bytes)", len(data), s.maxBytes))
	}

	fileName := req.FileName
	if fileName == "" {
		if fileName, err = s.generatedFileName(); err != nil {
			return nil, s.fail(ctx, log, err)
		}
	}

	scratchPath, err := s.scratch.Write(fileName, data)
	if err != nil {
		return nil, s.fail(ctx, log, errors.Wrap(err, "stage upload"))
	}
	defer func() {
		if err := filex.Remove(scratchPath); err != nil {
			log.Warn(ctx, "failed to remove scratch file", "path", scratchPath, "error", err)
		}
	}()
	if err := s.restrict(scratchPath); err != nil {
		log.Warn(ctx, "failed to restrict scratch file", "path", scratchPath, "error", err)
	}

	userCtx, err := s.resolveContext(ctx, caller, req)
	if err != nil && !errors.Is(err, common.ErrContextNotFound) {
		return nil, s.fail(ctx, log, err)
	}
	if err := s.guard.ValidateContext(ctx, s.db, caller, userCtx); err != nil {
		return nil, s.fail(ctx, log, err)
	}
	if userCtx.ContextLevel != models.ContextUser || userCtx.InstanceID != caller.UserID {
		return nil, s.fail(ctx, log, common.ErrNoPermissions)
	}
	if req.Component == common.ComponentUser && req.FileArea == common.FileAreaPrivate {
		return nil, s.fail(ctx, log, common.ErrPrivateUpload)
	}

	itemID := req.ItemID
	if req.FileArea == common.FileAreaPrivate {
		itemID = 0
	} else if itemID <= 0 {
		if itemID, err = s.allocator.Allocate(ctx, s.db, userCtx.ID); err != nil {
			return nil, s.fail(ctx, log, err)
		}
	}

	draftTuple := models.FileTuple{
		ContextID: userCtx.ID,
		Component: req.Component,
		FileArea:  req.FileArea,
		ItemID:    itemID,
		FilePath:  req.FilePath,
		FileName:  fileName,
	}

	log.Info(ctx, "upload accepted", "context_id", userCtx.ID, "item_id", itemID, "filename", fileName, "size", len(data))

	var overview *models.File
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		overview, txErr = s.replaceOverviewImage(ctx, tx, caller, req.CourseID, draftTuple, scratchPath)
		return txErr
	})
	if err != nil {
		return nil, s.fail(ctx, log, err)
	}

	result := &models.UploadResult{
		ContextID: overview.ContextID,
		Component: overview.Component,
		FileArea:  overview.FileArea,
		ItemID:    overview.ItemID,
		FilePath:  overview.FilePath,
		FileName:  overview.FileName,
		URL:       s.storage.PluginFileURL(overview),
	}
	log.Info(ctx, "course image replaced", "context_id", result.ContextID, "filename", result.FileName)

	return result, nil
}

func (s *UploadService) replaceOverviewImage(ctx context.Context, tx dbx.DBTX, caller Caller, courseID int64,
	draftTuple models.FileTuple, scratchPath string) (*models.File, error) {

	if err := s.lock(ctx, tx, dbx.LockKey("course", courseID), s.lockTimeout); err != nil {
		if errors.Is(err, dbx.ErrLockTimeout) {
			return nil, common.ErrResourceBusy
		}
		return nil, err
	}

	exists, err := s.storage.FileExists(ctx, tx, draftTuple)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrFileExists
	}

	userID := caller.UserID
	if _, err := s.storage.CreateFromPath(ctx, tx, &models.File{FileTuple: draftTuple, UserID: &userID}, scratchPath); err != nil {
		return nil, err
	}

	course, err := s.repomanager.Courses(tx).GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrCourseNotFound
		}
		return nil, err
	}
	for _, capability := range s.capabilities {
		if err := s.guard.RequireCapability(ctx, tx, caller, course.ContextID, capability); err != nil {
			return nil, err
		}
	}

	if _, err := s.storage.DeleteArea(ctx, tx, models.AreaFilter{
		ContextID: course.ContextID,
		Component: common.ComponentCourse,
		FileArea:  common.FileAreaOverviewFiles,
	}); err != nil {
		return nil, err
	}

	draft, err := s.storage.GetFile(ctx, tx, draftTuple)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrDraftFileNotFound
		}
		return nil, err
	}

	overview, err := s.storage.CreateFromStoredFile(ctx, tx, &models.File{
		FileTuple: models.FileTuple{
			ContextID: course.ContextID,
			Component: common.ComponentCourse,
			FileArea:  common.FileAreaOverviewFiles,
			ItemID:    0,
			FilePath:  common.RootFilePath,
			FileName:  draft.FileName,
		},
		UserID: &userID,
	}, draft)
	if err != nil {
		return nil, err
	}

	itemID := draftTuple.ItemID
	if _, err := s.storage.DeleteArea(ctx, tx, models.AreaFilter{
		ContextID: draftTuple.ContextID,
		Component: common.ComponentUser,
		FileArea:  common.FileAreaDraft,
		ItemID:    &itemID,
	}); err != nil {
		return nil, err
	}

	return overview, nil
}

// resolveContext picks the draft context: explicit id, then level+instance,
// then the caller's own user context.
func (s *UploadService) resolveContext(ctx context.Context, caller Caller, req *models.UploadRequest) (*models.Context, error) {
	repo := s.repomanager.Contexts(s.db)

	var (
		c   *models.Context
		err error
	)
	switch {
	case req.ContextID > 0:
		c, err = repo.GetByID(ctx, req.ContextID)
	case req.ContextLevel != "":
		level, _ := models.ParseContextLevel(req.ContextLevel)
		c, err = repo.GetByInstance(ctx, level, req.InstanceID)
	default:
		c, err = repo.GetByInstance(ctx, models.ContextUser, caller.UserID)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrContextNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *UploadService) generatedFileName() (string, error) {
	token, err := common.MakeRandHexString(6)
	if err != nil {
		return "", errors.Wrap(err, "generate file name")
	}
	return fmt.Sprintf("wsupload%s_%d.tmp", token, s.now().Unix()), nil
}

// fail logs internal errors and returns err unchanged.
func (s *UploadService) fail(ctx context.Context, log logging.Logger, err error) error {
	if common.KindOf(err) == common.KindInternal {
		log.Error(ctx, "upload failed", "error", err)
		return errors.Wrap(err, "upload course image")
	}
	log.Info(ctx, "upload rejected", "code", errorCode(err))
	return err
}

// decodeContent accepts standard base64, with or without padding, and
// ignores line breaks.
func decodeContent(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, common.ErrInvalidParameter.WithMessage("invalid parameter value detected: filecontent is not base64")
	}
	if len(data) == 0 {
		return nil, common.ErrNoFile
	}
	return data, nil
}

func errorCode(err error) string {
	if typed, ok := common.AsError(err); ok {
		return typed.Code
	}
	return ""
}
