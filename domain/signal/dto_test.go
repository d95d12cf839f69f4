package signal

import (
	"testing"
	"time"

	"github.com/frag7/intake-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSubmitSignalRequestHelpers(t *testing.T) {
	req := &SubmitSignalRequest{
		IntakePath:        IntakePathNewCell,
		SovereigntyPledge: "on",
		ConnectOptIn:      "",
	}

	assert.True(t, req.IsNewCell())
	assert.True(t, req.PledgeSigned())
	assert.False(t, req.OptedIn())

	req.IntakePath = "join-existing"
	assert.False(t, req.IsNewCell())
}

func TestToQueueEntryModel(t *testing.T) {
	assert.Nil(t, ToQueueEntryModel(nil))

	entry := ToQueueEntryModel(&SubmitSignalRequest{
		Name:       "Ada",
		Email:      "ada@example.com",
		Region:     "east",
		Skillset:   "Biz Development",
		ChatHandle: "@ada",
	})

	require.NotNil(t, entry)
	assert.Equal(t, "Ada", entry.Handle)
	assert.Equal(t, "east", entry.Region)
	assert.Equal(t, models.RoleClassBiz, entry.RoleClass)
	assert.Equal(t, models.StatusWaiting, entry.Status)
	assert.Nil(t, entry.PodID)
}

func TestToPodResponse(t *testing.T) {
	assert.Nil(t, ToPodResponse(nil))

	formedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pod := &Pod{
		ID:       "pod-east-1-abc",
		Region:   "east",
		FormedAt: formedAt,
		Members: []models.QueueEntry{
			{Model: gorm.Model{ID: 1}, Handle: "a", RoleClass: models.RoleClassTech},
			{Model: gorm.Model{ID: 2}, Handle: "b", RoleClass: models.RoleClassTech, ChatHandle: "@b"},
			{Model: gorm.Model{ID: 3}, Handle: "c", RoleClass: models.RoleClassTech},
			{Model: gorm.Model{ID: 4}, Handle: "d", RoleClass: models.RoleClassBiz},
		},
	}

	resp := ToPodResponse(pod)
	require.NotNil(t, resp)
	assert.Equal(t, "pod-east-1-abc", resp.PodID)
	assert.Equal(t, "east", resp.Region)
	assert.Equal(t, "2026-08-01T12:00:00Z", resp.FormedAt)
	require.Len(t, resp.Members, models.PodSize)
	assert.Equal(t, uint(2), resp.Members[1].EntryID)
	assert.Equal(t, "@b", resp.Members[1].ChatHandle)
	assert.Equal(t, models.RoleClassBiz, resp.Members[3].RoleClass)
}
