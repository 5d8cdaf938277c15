package store

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/atrule/invoicing/internal/models"
)

// DeleteBatch collects pending delete intents and commits them as soft-delete
// flag updates in a single transaction. Rows are never removed.
//
// Before anything is written, the batch is rewritten: delete intents for
// invoices and resources whose owning client is itself queued for deletion in
// the same batch are reverted, so deleting a client only marks the client.
// The transformation is an explicit pass over an explicit list of operations,
// not a side effect of change tracking.
type DeleteBatch struct {
	clients []*models.Client
	others  []models.SoftDeletable
}

// Queue registers a delete intent for a soft-deletable entity. The entity
// must carry its primary key.
func (b *DeleteBatch) Queue(entity models.SoftDeletable) {
	if c, ok := entity.(*models.Client); ok {
		b.clients = append(b.clients, c)
		return
	}
	b.others = append(b.others, entity)
}

// Len reports the number of queued intents.
func (b *DeleteBatch) Len() int {
	return len(b.clients) + len(b.others)
}

// Apply rewrites the queued intents and commits the surviving ones. It
// returns the entities whose deletion was reverted by the client-protection
// rule; those are left untouched in the database and in memory.
func (b *DeleteBatch) Apply(ctx context.Context, db *gorm.DB) ([]models.SoftDeletable, error) {
	protected := make(map[uint]bool, len(b.clients))
	for _, c := range b.clients {
		protected[c.ID] = true
	}

	var reverted []models.SoftDeletable
	survivors := make([]models.SoftDeletable, 0, len(b.others))
	for _, entity := range b.others {
		if owned, ok := entity.(models.ClientOwned); ok && protected[owned.OwningClientID()] {
			reverted = append(reverted, entity)
			log.Debug().Uint("client_id", owned.OwningClientID()).
				Msgf("prevented deletion of %T owned by client queued for deletion", entity)
			continue
		}
		survivors = append(survivors, entity)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range b.clients {
			if err := tx.Model(c).Update("is_deleted", true).Error; err != nil {
				return err
			}
		}
		for _, entity := range survivors {
			if err := tx.Model(entity).Update("is_deleted", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range b.clients {
		c.MarkDeleted()
	}
	for _, entity := range survivors {
		entity.MarkDeleted()
	}
	return reverted, nil
}
