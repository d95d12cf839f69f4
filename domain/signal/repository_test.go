package signal

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/frag7/intake-api/internal/log"
	"github.com/frag7/intake-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps every goroutine on the same in-memory
	// database and serializes writes the way SQLite expects.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.QueueEntry{}))
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, region, roleClass string) *models.QueueEntry {
	t.Helper()

	entry := &models.QueueEntry{
		Email:     fmt.Sprintf("%s@example.com", roleClass),
		Handle:    "candidate",
		Region:    region,
		RoleClass: roleClass,
		Status:    models.StatusWaiting,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestQueueRepository_ListWaiting(t *testing.T) {
	db := newTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	first := seedEntry(t, db, "east", models.RoleClassTech)
	second := seedEntry(t, db, "east", models.RoleClassTech)
	seedEntry(t, db, "west", models.RoleClassTech)
	seedEntry(t, db, "east", models.RoleClassBiz)

	entries, err := repo.ListWaiting(ctx, "east", models.RoleClassTech, 3)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Oldest first.
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)

	// Claimed rows disappear from the waiting pool.
	require.NoError(t, repo.AssignPod(ctx, []uint{first.ID}, "pod-x"))

	entries, err = repo.ListWaiting(ctx, "east", models.RoleClassTech, 3)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].ID)
}

func TestQueueRepository_AssignPod(t *testing.T) {
	t.Run("assigns every entry exactly once", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewQueueRepository(db)
		ctx := context.Background()

		a := seedEntry(t, db, "east", models.RoleClassTech)
		b := seedEntry(t, db, "east", models.RoleClassBiz)

		require.NoError(t, repo.AssignPod(ctx, []uint{a.ID, b.ID}, "pod-1"))

		var reloaded []models.QueueEntry
		require.NoError(t, db.Find(&reloaded).Error)
		for _, entry := range reloaded {
			assert.Equal(t, models.StatusAssigned, entry.Status)
			require.NotNil(t, entry.PodID)
			assert.Equal(t, "pod-1", *entry.PodID)
		}
	})

	t.Run("all-or-nothing on a lost race", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewQueueRepository(db)
		ctx := context.Background()

		claimed := seedEntry(t, db, "east", models.RoleClassTech)
		free1 := seedEntry(t, db, "east", models.RoleClassTech)
		free2 := seedEntry(t, db, "east", models.RoleClassBiz)

		require.NoError(t, repo.AssignPod(ctx, []uint{claimed.ID}, "pod-early"))

		err := repo.AssignPod(ctx, []uint{claimed.ID, free1.ID, free2.ID}, "pod-late")
		require.ErrorIs(t, err, ErrPodConflict)

		// The losing assignment must leave the free entries untouched.
		var reloaded models.QueueEntry
		require.NoError(t, db.First(&reloaded, free1.ID).Error)
		assert.Equal(t, models.StatusWaiting, reloaded.Status)
		assert.Nil(t, reloaded.PodID)

		reloaded = models.QueueEntry{}
		require.NoError(t, db.First(&reloaded, free2.ID).Error)
		assert.Equal(t, models.StatusWaiting, reloaded.Status)
		assert.Nil(t, reloaded.PodID)

		// And the earlier claim must survive.
		reloaded = models.QueueEntry{}
		require.NoError(t, db.First(&reloaded, claimed.ID).Error)
		assert.Equal(t, models.StatusAssigned, reloaded.Status)
		require.NotNil(t, reloaded.PodID)
		assert.Equal(t, "pod-early", *reloaded.PodID)
	})
}

func TestQueueRepository_CountWaiting(t *testing.T) {
	db := newTestDB(t)
	repo := NewQueueRepository(db)
	ctx := context.Background()

	seedEntry(t, db, "east", models.RoleClassTech)
	seedEntry(t, db, "east", models.RoleClassTech)
	seedEntry(t, db, "east", models.RoleClassBiz)
	assigned := seedEntry(t, db, "east", models.RoleClassTech)
	seedEntry(t, db, "west", models.RoleClassBiz)

	require.NoError(t, repo.AssignPod(ctx, []uint{assigned.ID}, "pod-1"))

	counts, err := repo.CountWaiting(ctx)
	require.NoError(t, err)

	require.Contains(t, counts, "east")
	assert.Equal(t, int64(2), counts["east"].Tech)
	assert.Equal(t, int64(1), counts["east"].Biz)

	require.Contains(t, counts, "west")
	assert.Equal(t, int64(0), counts["west"].Tech)
	assert.Equal(t, int64(1), counts["west"].Biz)
}

// Concurrent matchers racing over one region must never double-assign an
// entry or commit a partial pod: the assigned population stays a multiple of
// the pod size and every pod holds exactly 3 TECH + 1 BIZ.
func TestPodMatcher_ConcurrentTryForm(t *testing.T) {
	db := newTestDB(t)
	repo := NewQueueRepository(db)
	matcher := NewPodMatcher(log.NewLoggerWithJSONOutput(), repo)
	ctx := context.Background()

	const (
		techSeeded = 31
		bizSeeded  = 9
		workers    = 8
		rounds     = 10
	)

	for i := 0; i < techSeeded; i++ {
		seedEntry(t, db, "east", models.RoleClassTech)
	}
	for i := 0; i < bizSeeded; i++ {
		seedEntry(t, db, "east", models.RoleClassBiz)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				_, err := matcher.TryForm(ctx, "east")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	var assigned []models.QueueEntry
	require.NoError(t, db.Where("status = ?", models.StatusAssigned).Find(&assigned).Error)

	assert.Equal(t, 0, len(assigned)%models.PodSize)
	assert.Equal(t, bizSeeded*models.PodSize, len(assigned))

	pods := make(map[string][]models.QueueEntry)
	for _, entry := range assigned {
		require.NotNil(t, entry.PodID)
		pods[*entry.PodID] = append(pods[*entry.PodID], entry)
	}

	for podID, members := range pods {
		tech, biz := 0, 0
		for _, member := range members {
			switch member.RoleClass {
			case models.RoleClassTech:
				tech++
			case models.RoleClassBiz:
				biz++
			}
		}
		assert.Equal(t, models.PodTechSeats, tech, "pod %s", podID)
		assert.Equal(t, models.PodBizSeats, biz, "pod %s", podID)
	}
}
