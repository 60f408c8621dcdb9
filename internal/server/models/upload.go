package models

import (
	"path"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/courseimage/internal/common"
)

// UploadRequest carries the parameters of local_ws_subir_imagen_curso.
type UploadRequest struct {
	ContextID    int64  `json:"contextid"`
	Component    string `json:"component"`
	FileArea     string `json:"filearea"`
	ItemID       int64  `json:"itemid"`
	FilePath     string `json:"filepath"`
	FileName     string `json:"filename"`
	FileContent  string `json:"filecontent"`
	ContextLevel string `json:"contextlevel"`
	InstanceID   int64  `json:"instanceid"`
	CourseID     int64  `json:"courseid"`
}

// UploadResult identifies the stored overview image.
type UploadResult struct {
	ContextID int64  `json:"contextid"`
	Component string `json:"component"`
	FileArea  string `json:"filearea"`
	ItemID    int64  `json:"itemid"`
	FilePath  string `json:"filepath"`
	FileName  string `json:"filename"`
	URL       string `json:"url"`
}

// Validate checks the request and normalises FilePath. It never touches
// storage, so a rejected request leaves no trace.
func (r *UploadRequest) Validate() error {
	if r.FileContent == "" {
		return common.ErrNoFile
	}
	if r.CourseID <= 0 {
		return common.ErrInvalidParameter.WithMessage("invalid parameter value detected: courseid")
	}
	if r.ContextID < 0 || r.InstanceID < 0 {
		return common.ErrInvalidParameter.WithMessage("invalid parameter value detected: contextid/instanceid")
	}
	if r.ContextLevel != "" {
		if _, ok := ParseContextLevel(r.ContextLevel); !ok {
			return common.ErrInvalidParameter.WithMessage("invalid parameter value detected: contextlevel %q", r.ContextLevel)
		}
	}
	if r.FileName != "" && !IsCleanFileName(r.FileName) {
		return common.ErrInvalidParameter.WithMessage("invalid parameter value detected: filename")
	}

	filePath, ok := CleanFilePath(r.FilePath)
	if !ok {
		return common.ErrInvalidParameter.WithMessage("invalid parameter value detected: filepath")
	}
	r.FilePath = filePath

	if r.Component != common.ComponentUser || r.FileArea != common.FileAreaDraft {
		return common.ErrDraftOnly
	}

	return nil
}

// IsCleanFileName reports whether name is usable as a stored file name.
func IsCleanFileName(name string) bool {
	if name == "." || name == ".." || len(name) > 255 {
		return false
	}
	for _, r := range name {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return false
		}
	}
	return strings.TrimSpace(name) != ""
}

// CleanFilePath normalises a directory path: "" becomes "/", and the result
// always starts and ends with "/". Paths escaping the root are rejected.
func CleanFilePath(p string) (string, bool) {
	if p == "" || p == "/" {
		return common.RootFilePath, true
	}
	if !strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", false
	}
	for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
		if seg == ".." {
			return "", false
		}
	}
	for _, r := range p {
		if unicode.IsControl(r) {
			return "", false
		}
	}

	cleaned := path.Clean(p)
	if cleaned == "/" {
		return cleaned, true
	}
	return cleaned + "/", true
}
