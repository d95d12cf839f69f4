package signal

import (
	"context"

	"github.com/frag7/intake-api/internal/models"
	apperrors "github.com/frag7/intake-api/pkg/errors"
	"gorm.io/gorm"
)

type QueueRepository interface {
	// CreateEntry persists a new queue entry with status WAITING and no pod.
	CreateEntry(ctx context.Context, entry *models.QueueEntry) (*models.QueueEntry, error)

	// ListWaiting returns WAITING entries for a region and role class,
	// oldest-first, bounded to limit rows.
	ListWaiting(ctx context.Context, region, roleClass string, limit int) ([]models.QueueEntry, error)

	// AssignPod conditionally transitions exactly the given entries from
	// WAITING to ASSIGNED under podID. All-or-nothing: if any entry has
	// already been claimed, nothing changes and ErrPodConflict is returned.
	AssignPod(ctx context.Context, entryIDs []uint, podID string) error

	// CountWaiting reports WAITING entry counts per region, split by role
	// class. Regions with no waiting entries are absent from the map.
	CountWaiting(ctx context.Context) (map[string]models.RegionCounts, error)
}

type queueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &queueRepository{db: db}
}

func (qr *queueRepository) CreateEntry(ctx context.Context, entry *models.QueueEntry) (*models.QueueEntry, error) {
	if err := qr.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to create queue entry", err)
	}

	return entry, nil
}

func (qr *queueRepository) ListWaiting(ctx context.Context, region, roleClass string, limit int) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry

	err := qr.db.WithContext(ctx).
		Where("region = ? AND role_class = ? AND status = ?", region, roleClass, models.StatusWaiting).
		Order("id ASC").
		Limit(limit).
		Find(&entries).Error

	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to list waiting entries", err)
	}

	return entries, nil
}

// AssignPod is the crux of matching correctness: the UPDATE only touches rows
// still WAITING, and the surrounding transaction rolls back unless every
// requested row was touched. Two concurrent matchers racing for overlapping
// candidates therefore cannot both win, and the loser leaves no partial state.
func (qr *queueRepository) AssignPod(ctx context.Context, entryIDs []uint, podID string) error {
	if len(entryIDs) == 0 {
		return apperrors.NewInvalidRequestError("no entries to assign", nil)
	}

	return qr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.QueueEntry{}).
			Where("id IN ? AND status = ?", entryIDs, models.StatusWaiting).
			Updates(map[string]interface{}{
				"status": models.StatusAssigned,
				"pod_id": podID,
			})

		if result.Error != nil {
			return apperrors.NewDatabaseError("unable to assign pod", result.Error)
		}

		if result.RowsAffected != int64(len(entryIDs)) {
			// Lost the race for at least one candidate. Returning an error
			// aborts the transaction, so the rows that were still WAITING
			// stay WAITING.
			return ErrPodConflict
		}

		return nil
	})
}

func (qr *queueRepository) CountWaiting(ctx context.Context) (map[string]models.RegionCounts, error) {
	var rows []struct {
		Region    string
		RoleClass string
		Count     int64
	}

	err := qr.db.WithContext(ctx).
		Model(&models.QueueEntry{}).
		Select("region, role_class, COUNT(*) as count").
		Where("status = ?", models.StatusWaiting).
		Group("region, role_class").
		Scan(&rows).Error

	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to count waiting entries", err)
	}

	counts := make(map[string]models.RegionCounts, len(rows))
	for _, row := range rows {
		rc := counts[row.Region]
		switch row.RoleClass {
		case models.RoleClassTech:
			rc.Tech = row.Count
		case models.RoleClassBiz:
			rc.Biz = row.Count
		}
		counts[row.Region] = rc
	}

	return counts, nil
}
