package partners

import (
	"strings"

	"github.com/channelworks/partnerhub-backend/pkg/db/models"
)

// Onboarding progress is derived, never stored directly by callers. Each
// milestone contributes a fixed share and the total is capped at 100.
const (
	progressBasicInfo        = 10
	progressDocuments        = 20
	progressTierAssigned     = 10
	progressSubmitted        = 15
	progressPastL1           = 15
	progressApproved         = 15
	progressProductsAssigned = 15

	// Two distinct documents are enough to count the document milestone.
	documentsMilestoneCount = 2

	maxProgress = 100
)

// DeriveProgress computes the onboarding percentage from the partner's
// milestones plus its document and commission counts.
func DeriveProgress(p *models.Partner, documentCount, commissionCount int64) int {
	if p == nil {
		return 0
	}

	progress := 0
	if hasBasicInfo(p) {
		progress += progressBasicInfo
	}
	if documentCount >= documentsMilestoneCount {
		progress += progressDocuments
	}
	if p.Tier != nil {
		progress += progressTierAssigned
	}
	if p.SubmittedAt != nil {
		progress += progressSubmitted
	}
	if p.L1ApprovedAt != nil {
		progress += progressPastL1
	}
	if p.ApprovedAt != nil {
		progress += progressApproved
	}
	if commissionCount > 0 {
		progress += progressProductsAssigned
	}

	if progress > maxProgress {
		progress = maxProgress
	}
	return progress
}

func hasBasicInfo(p *models.Partner) bool {
	return strings.TrimSpace(p.CompanyName) != "" &&
		strings.TrimSpace(p.BusinessType) != "" &&
		strings.TrimSpace(p.ContactName) != "" &&
		strings.TrimSpace(p.ContactEmail) != ""
}
