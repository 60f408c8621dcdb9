// Package models defines the rows persisted by the service and the
// request/response shapes of the upload call.
package models

import "github.com/dmitrijs2005/courseimage/internal/cryptox"

// FileTuple locates a stored file. No two files share a tuple.
type FileTuple struct {
	ContextID int64
	Component string
	FileArea  string
	ItemID    int64
	FilePath  string
	FileName  string
}

// PathnameHash is the unique key of the tuple.
func (t FileTuple) PathnameHash() string {
	return cryptox.PathnameHash(t.ContextID, t.Component, t.FileArea, t.ItemID, t.FilePath, t.FileName)
}

// File is a row of the files table. The bytes live in the blob store under
// ContentHash.
type File struct {
	ID int64
	FileTuple

	ContentHash  string
	PathnameHash string
	UserID       *int64
	FileSize     int64
	MimeType     string

	// Unix seconds.
	TimeCreated  int64
	TimeModified int64
}

// AreaFilter selects files for delete-by-filter. A nil ItemID matches every item.
type AreaFilter struct {
	ContextID int64
	Component string
	FileArea  string
	ItemID    *int64
}
