package signal

import (
	"strings"

	"github.com/frag7/intake-api/internal/models"
)

// bizPrefix is the recognized business marker on skillset codes.
const bizPrefix = "biz"

// ClassifyRole derives a role class from a raw skillset code. Codes carrying
// the business prefix classify BIZ; everything else, including empty or
// unrecognized input, defaults to TECH so that every submission is admittable.
func ClassifyRole(skillset string) string {
	code := strings.ToLower(strings.TrimSpace(skillset))

	if strings.HasPrefix(code, bizPrefix) {
		return models.RoleClassBiz
	}

	return models.RoleClassTech
}
