// Package memrepo is an in-memory RepositoryManager. It ignores the DBTX it
// is handed, so callers still need a real (or mocked) database for
// transactions and advisory locks.
package memrepo

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/dbx"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/capabilities"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/contexts"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/courses"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/files"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/users"
)

type grant struct {
	userID     int64
	contextID  int64
	capability string
}

type Manager struct {
	mu       sync.Mutex
	nextID   int64
	files    map[string]*models.File
	contexts map[int64]*models.Context
	courses  map[int64]*models.Course
	users    map[int64]*models.User
	grants   []grant

	// FailOn makes the named operation ("files.Create", "files.DeleteArea", ...)
	// return the error.
	FailOn map[string]error
}

// New returns a manager seeded with the system context (id 1).
func New() *Manager {
	m := &Manager{
		nextID:   100,
		files:    map[string]*models.File{},
		contexts: map[int64]*models.Context{},
		courses:  map[int64]*models.Course{},
		users:    map[int64]*models.User{},
		FailOn:   map[string]error{},
	}
	m.contexts[1] = &models.Context{ID: 1, ContextLevel: models.ContextSystem, Path: "/1", Depth: 1}
	return m
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Files(dbx.DBTX) files.Repository               { return &fileRepo{m} }
func (m *Manager) Contexts(dbx.DBTX) contexts.Repository         { return &contextRepo{m} }
func (m *Manager) Courses(dbx.DBTX) courses.Repository           { return &courseRepo{m} }
func (m *Manager) Users(dbx.DBTX) users.Repository               { return &userRepo{m} }
func (m *Manager) Capabilities(dbx.DBTX) capabilities.Repository { return &capabilityRepo{m} }

// AddUser creates a user and its user context under the system context.
func (m *Manager) AddUser(u models.User) *models.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := u
	m.users[u.ID] = &cp
	return m.addContextLocked(models.ContextUser, u.ID, 1)
}

// AddCategory creates a course category context under the system context.
func (m *Manager) AddCategory(id int64) *models.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addContextLocked(models.ContextCourseCat, id, 1)
}

// AddCourse creates a course and its context below parentContextID.
func (m *Manager) AddCourse(c models.Course, parentContextID int64) *models.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx := m.addContextLocked(models.ContextCourse, c.ID, parentContextID)
	cp := c
	cp.ContextID = ctx.ID
	m.courses[c.ID] = &cp
	return ctx
}

// Grant gives userID the capability in contextID and everything below it.
func (m *Manager) Grant(userID, contextID int64, capability string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants = append(m.grants, grant{userID, contextID, capability})
}

// AllFiles returns a snapshot of every file row ordered by id.
func (m *Manager) AllFiles() []*models.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.File, 0, len(m.files))
	for _, f := range m.files {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Manager) addContextLocked(level models.ContextLevel, instanceID, parentID int64) *models.Context {
	m.nextID++
	parent := m.contexts[parentID]
	path := fmt.Sprintf("/%d", m.nextID)
	depth := 1
	if parent != nil {
		path = parent.Path + path
		depth = parent.Depth + 1
	}
	c := &models.Context{ID: m.nextID, ContextLevel: level, InstanceID: instanceID, Path: path, Depth: depth}
	m.contexts[c.ID] = c
	cp := *c
	return &cp
}

func (m *Manager) fail(op string) error {
	return m.FailOn[op]
}

type fileRepo struct{ m *Manager }

func (r *fileRepo) Create(_ context.Context, f *models.File) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("files.Create"); err != nil {
		return nil, err
	}
	if f.PathnameHash == "" {
		f.PathnameHash = f.FileTuple.PathnameHash()
	}
	if _, ok := r.m.files[f.PathnameHash]; ok {
		return nil, common.ErrFileExists
	}
	r.m.nextID++
	f.ID = r.m.nextID
	cp := *f
	r.m.files[f.PathnameHash] = &cp
	return f, nil
}

func (r *fileRepo) Get(_ context.Context, tuple models.FileTuple) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("files.Get"); err != nil {
		return nil, err
	}
	f, ok := r.m.files[tuple.PathnameHash()]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fileRepo) Exists(_ context.Context, tuple models.FileTuple) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("files.Exists"); err != nil {
		return false, err
	}
	_, ok := r.m.files[tuple.PathnameHash()]
	return ok, nil
}

func (r *fileRepo) ItemInUse(_ context.Context, contextID int64, component, fileArea string, itemID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, f := range r.m.files {
		if f.ContextID == contextID && f.Component == component && f.FileArea == fileArea && f.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fileRepo) DeleteArea(_ context.Context, filter models.AreaFilter) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("files.DeleteArea"); err != nil {
		return 0, err
	}
	var n int64
	for k, f := range r.m.files {
		if matches(f, filter) {
			delete(r.m.files, k)
			n++
		}
	}
	return n, nil
}

func matches(f *models.File, filter models.AreaFilter) bool {
	if f.ContextID != filter.ContextID || f.Component != filter.Component || f.FileArea != filter.FileArea {
		return false
	}
	return filter.ItemID == nil || *filter.ItemID == f.ItemID
}

type contextRepo struct{ m *Manager }

func (r *contextRepo) GetByID(_ context.Context, id int64) (*models.Context, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.contexts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *contextRepo) GetByInstance(_ context.Context, level models.ContextLevel, instanceID int64) (*models.Context, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.contexts {
		if c.ContextLevel == level && c.InstanceID == instanceID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

type courseRepo struct{ m *Manager }

func (r *courseRepo) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.courses[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type userRepo struct{ m *Manager }

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type capabilityRepo struct{ m *Manager }

func (r *capabilityRepo) Has(_ context.Context, userID, contextID int64, capability string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("capabilities.Has"); err != nil {
		return false, err
	}
	c, ok := r.m.contexts[contextID]
	if !ok {
		return false, nil
	}
	path := c.Path + "/"
	for _, g := range r.m.grants {
		if g.userID == userID && g.capability == capability &&
			strings.Contains(path, fmt.Sprintf("/%d/", g.contextID)) {
			return true, nil
		}
	}
	return false, nil
}
