package models

import (
	"strconv"
	"strings"
)

// ContextLevel is the kind of scope a context represents.
type ContextLevel int

const (
	ContextSystem    ContextLevel = 10
	ContextUser      ContextLevel = 30
	ContextCourseCat ContextLevel = 40
	ContextCourse    ContextLevel = 50
	ContextModule    ContextLevel = 70
	ContextBlock     ContextLevel = 80
)

var contextLevelNames = map[string]ContextLevel{
	"system":    ContextSystem,
	"user":      ContextUser,
	"coursecat": ContextCourseCat,
	"course":    ContextCourse,
	"module":    ContextModule,
	"block":     ContextBlock,
}

// ParseContextLevel maps the wire name of a level to its value.
func ParseContextLevel(name string) (ContextLevel, bool) {
	level, ok := contextLevelNames[strings.ToLower(name)]
	return level, ok
}

// Context is a node of the context tree. Path lists ancestor ids and ends
// with the context's own id, e.g. "/1/3/27".
type Context struct {
	ID           int64
	ContextLevel ContextLevel
	InstanceID   int64
	Path         string
	Depth        int
}

// AncestorIDs returns the ids in Path, root first, including the context itself.
func (c *Context) AncestorIDs() []int64 {
	parts := strings.Split(strings.Trim(c.Path, "/"), "/")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 || ids[len(ids)-1] != c.ID {
		ids = append(ids, c.ID)
	}
	return ids
}
