package signal

import (
	"github.com/frag7/intake-api/internal/models"
	"github.com/frag7/intake-api/pkg/constants"
)

// IntakePathNewCell is the form's path selector value for registering a new
// cell; any other value is treated as joining an existing one.
const IntakePathNewCell = "register-new"

// checkboxOn is what the public form posts for a checked checkbox.
const checkboxOn = "on"

// SubmitSignalRequest mirrors the public intake form payload, JSON keys
// included.
type SubmitSignalRequest struct {
	Name              string `json:"yourName" binding:"required,min=1,max=255"`
	Email             string `json:"yourEmail" binding:"required,email,max=255"`
	Region            string `json:"location" binding:"required,min=1,max=255"`
	Skillset          string `json:"skillset" binding:"required,min=1,max=255"`
	IntakePath        string `json:"intakePath" binding:"omitempty,max=64"`
	CellName          string `json:"cellName" binding:"omitempty,max=255"`
	MissionSpecialty  string `json:"missionSpecialty" binding:"omitempty,max=255"`
	SovereigntyPledge string `json:"sovereigntyPledge" binding:"omitempty,max=8"`
	ConnectOptIn      string `json:"connectOptIn" binding:"omitempty,max=8"`
	ChatHandle        string `json:"chatHandle" binding:"omitempty,max=255"`
	TurnstileToken    string `json:"cf-turnstile-response" binding:"required"`
}

func (r *SubmitSignalRequest) IsNewCell() bool {
	return r.IntakePath == IntakePathNewCell
}

func (r *SubmitSignalRequest) PledgeSigned() bool {
	return r.SovereigntyPledge == checkboxOn
}

func (r *SubmitSignalRequest) OptedIn() bool {
	return r.ConnectOptIn == checkboxOn
}

// SignalAck is the generic success acknowledgment. Storage problems and pod
// formation are deliberately invisible to the submitter.
type SignalAck struct {
	Received bool `json:"received"`
}

// PodMemberResponse is one ordered member of a formed pod as the status and
// notification surfaces see it.
type PodMemberResponse struct {
	EntryID    uint   `json:"entry_id"`
	Handle     string `json:"handle"`
	RoleClass  string `json:"role_class"`
	ChatHandle string `json:"chat_handle,omitempty"`
}

// PodResponse describes a formed pod.
type PodResponse struct {
	PodID    string              `json:"pod_id"`
	Region   string              `json:"region"`
	FormedAt string              `json:"formed_at"`
	Members  []PodMemberResponse `json:"members"`
}

// ========================================
// Mappers
// ========================================

func ToQueueEntryModel(req *SubmitSignalRequest) *models.QueueEntry {
	if req == nil {
		return nil
	}
	return &models.QueueEntry{
		Email:      req.Email,
		Handle:     req.Name,
		ChatHandle: req.ChatHandle,
		Region:     req.Region,
		RoleClass:  ClassifyRole(req.Skillset),
		Status:     models.StatusWaiting,
	}
}

func ToPodResponse(pod *Pod) *PodResponse {
	if pod == nil {
		return nil
	}

	members := make([]PodMemberResponse, 0, len(pod.Members))
	for _, m := range pod.Members {
		members = append(members, PodMemberResponse{
			EntryID:    m.ID,
			Handle:     m.Handle,
			RoleClass:  m.RoleClass,
			ChatHandle: m.ChatHandle,
		})
	}

	return &PodResponse{
		PodID:    pod.ID,
		Region:   pod.Region,
		FormedAt: pod.FormedAt.Format(constants.RFC3339DateTimeFormat),
		Members:  members,
	}
}
