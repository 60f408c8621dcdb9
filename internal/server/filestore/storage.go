// Package filestore is the file storage facility: it ties file rows in the
// database to their bytes in the blob store.
package filestore

import (
	"context"
	"mime"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/cryptox"
	"github.com/dmitrijs2005/courseimage/internal/dbx"
	"github.com/dmitrijs2005/courseimage/internal/server/blobstore"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/repomanager"
	"github.com/gabriel-vasile/mimetype"
)

type Storage struct {
	repos   repomanager.RepositoryManager
	blobs   blobstore.Store
	wwwRoot string
	now     func() time.Time
}

func New(repos repomanager.RepositoryManager, blobs blobstore.Store, wwwRoot string) *Storage {
	return &Storage{
		repos:   repos,
		blobs:   blobs,
		wwwRoot: strings.TrimRight(wwwRoot, "/"),
		now:     time.Now,
	}
}

// CreateFromPath stores the content of a local file under record's tuple.
// The mimetype is derived from the file name, then from the content.
func (s *Storage) CreateFromPath(ctx context.Context, tx dbx.DBTX, record *models.File, localPath string) (*models.File, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", localPath)
	}

	hash := cryptox.ContentHash(data)
	if err := s.blobs.Put(ctx, hash, data); err != nil {
		return nil, errors.Wrap(err, "store content")
	}

	f := *record
	f.ContentHash = hash
	f.FileSize = int64(len(data))
	if f.MimeType == "" {
		f.MimeType = detectMimeType(f.FileName, data)
	}
	s.stamp(&f)

	return s.repos.Files(tx).Create(ctx, &f)
}

// CreateFromStoredFile creates a new row at record's tuple sharing src's
// content.
func (s *Storage) CreateFromStoredFile(ctx context.Context, tx dbx.DBTX, record *models.File, src *models.File) (*models.File, error) {
	f := *record
	f.ID = 0
	f.PathnameHash = ""
	f.ContentHash = src.ContentHash
	f.FileSize = src.FileSize
	f.MimeType = src.MimeType
	if f.UserID == nil {
		f.UserID = src.UserID
	}
	f.TimeCreated, f.TimeModified = 0, 0
	s.stamp(&f)

	return s.repos.Files(tx).Create(ctx, &f)
}

func (s *Storage) GetFile(ctx context.Context, tx dbx.DBTX, tuple models.FileTuple) (*models.File, error) {
	return s.repos.Files(tx).Get(ctx, tuple)
}

func (s *Storage) FileExists(ctx context.Context, tx dbx.DBTX, tuple models.FileTuple) (bool, error) {
	return s.repos.Files(tx).Exists(ctx, tuple)
}

func (s *Storage) DeleteArea(ctx context.Context, tx dbx.DBTX, filter models.AreaFilter) (int64, error) {
	return s.repos.Files(tx).DeleteArea(ctx, filter)
}

// Content reads the bytes of a stored file back from the blob store.
func (s *Storage) Content(ctx context.Context, file *models.File) ([]byte, error) {
	data, err := s.blobs.Get(ctx, file.ContentHash)
	if err != nil {
		return nil, errors.Wrapf(err, "load content of file %d", file.ID)
	}
	return data, nil
}

// PluginFileURL builds <wwwroot>/pluginfile.php/<ctx>/<component>/<area>[/<itemid>]<path><name>.
// Areas without item ids, such as course overview files, omit the item segment.
func (s *Storage) PluginFileURL(file *models.File) string {
	var b strings.Builder
	b.WriteString(s.wwwRoot)
	b.WriteString("/pluginfile.php/")
	b.WriteString(strconv.FormatInt(file.ContextID, 10))
	b.WriteString("/")
	b.WriteString(url.PathEscape(file.Component))
	b.WriteString("/")
	b.WriteString(url.PathEscape(file.FileArea))
	if file.ItemID != 0 {
		b.WriteString("/")
		b.WriteString(strconv.FormatInt(file.ItemID, 10))
	}
	for _, seg := range strings.Split(strings.Trim(file.FilePath, "/"), "/") {
		if seg == "" {
			continue
		}
		b.WriteString("/")
		b.WriteString(url.PathEscape(seg))
	}
	b.WriteString("/")
	b.WriteString(url.PathEscape(file.FileName))
	return b.String()
}

func (s *Storage) stamp(f *models.File) {
	now := s.now().Unix()
	if f.TimeCreated == 0 {
		f.TimeCreated = now
	}
	if f.TimeModified == 0 {
		f.TimeModified = now
	}
}

func detectMimeType(fileName string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(fileName))); t != "" {
		return stripParams(t)
	}
	return stripParams(mimetype.Detect(data).String())
}

func stripParams(t string) string {
	base, _, _ := strings.Cut(t, ";")
	return strings.TrimSpace(base)
}
