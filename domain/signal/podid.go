package signal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewPodID mints a pod identifier from the region, a high-resolution timestamp
// and a short random suffix. Uniqueness-in-practice is all that is required;
// the suffix guards against two pods forming in the same region within one
// clock tick.
func NewPodID(region string) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("pod-%s-%d-%s", slugifyRegion(region), time.Now().UTC().UnixNano(), suffix)
}

func slugifyRegion(region string) string {
	s := strings.ToLower(strings.TrimSpace(region))
	if s == "" {
		return "unknown"
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	return strings.Trim(b.String(), "-")
}
