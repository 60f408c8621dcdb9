package services

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/dbx"
	"github.com/dmitrijs2005/courseimage/internal/server/repositories/repomanager"
)

const maxAllocateAttempts = 16

// DraftItemAllocator hands out unused draft item ids.
type DraftItemAllocator struct {
	repomanager repomanager.RepositoryManager
	random      func() (int64, error)
}

func NewDraftItemAllocator(m repomanager.RepositoryManager) *DraftItemAllocator {
	return &DraftItemAllocator{repomanager: m, random: common.RandomPositiveInt31}
}

// Allocate returns a random id in [1, 2^31-1] that no draft file in the
// user context currently uses.
func (a *DraftItemAllocator) Allocate(ctx context.Context, db dbx.DBTX, userContextID int64) (int64, error) {
	repo := a.repomanager.Files(db)
	for i := 0; i < maxAllocateAttempts; i++ {
		id, err := a.random()
		if err != nil {
			return 0, errors.Wrap(err, "draw draft item id")
		}
		used, err := repo.ItemInUse(ctx, userContextID, common.ComponentUser, common.FileAreaDraft, id)
		if err != nil {
			return 0, err
		}
		if !used {
			return id, nil
		}
	}
	return 0, errors.Errorf("no free draft item id after %d attempts", maxAllocateAttempts)
}
