package handler

import (
	"fmt"
	"math"
	"strings"

	"lifebridge/internal/matching"
)

// RecipientSummary is the recipient header of a ranking response.
type RecipientSummary struct {
	ID        string `json:"id"`
	BloodType string `json:"blood_type"`
	Urgency   int    `json:"urgency,omitempty"`
}

// MatchEntry is one ranked match as serialized to a viewer.
//
// ExactScore is a conditionally-present field: for viewers without the
// exact-score capability the key is absent from the payload entirely,
// not null and not zero.
type MatchEntry struct {
	DonorID        string             `json:"donor_id"`
	NoisyScore     float64            `json:"noisy_score"`
	ScoreBreakdown matching.Breakdown `json:"score_breakdown"`
	Explanation    string             `json:"explanation"`
	CrossBorder    bool               `json:"cross_border"`
	ExactScore     *float64           `json:"exact_score,omitempty"`
}

// RankResponse is the full ranking payload.
type RankResponse struct {
	Recipient RecipientSummary `json:"recipient"`
	Matches   []MatchEntry     `json:"matches"`
	Partial   bool             `json:"partial,omitempty"`

	// ExactScoresIncluded is set only on authorized responses, as the
	// persistent reminder that exact exposure is a privacy risk.
	ExactScoresIncluded bool   `json:"exact_scores_included,omitempty"`
	PrivacyNotice       string `json:"privacy_notice,omitempty"`
}

// AllocationEntry is one row of the urgent-recipient queue.
type AllocationEntry struct {
	RecipientID   string `json:"recipient_id"`
	OrganRequired string `json:"organ_required,omitempty"`
	UrgencyScore  int    `json:"urgency_score"`
	BestDonorID   string `json:"best_donor_id,omitempty"`
	Status        string `json:"status"`
}

// AllocationsResponse wraps the allocation queue.
type AllocationsResponse struct {
	Allocations []AllocationEntry `json:"allocations"`
}

const exactExposureNotice = "exact compatibility scores included; exposure is recorded in the disclosure audit trail"

// FromRankResult builds the viewer-facing payload. revealExact must only
// be true after the privacy filter approved the caller and the disclosure
// was audited.
func FromRankResult(res *matching.RankResult, revealExact bool) RankResponse {
	out := RankResponse{
		Recipient: RecipientSummary{
			ID:        string(res.Recipient.ID),
			BloodType: string(res.Recipient.BloodType),
			Urgency:   res.Recipient.UrgencyScore,
		},
		Matches: make([]MatchEntry, 0, len(res.Matches)),
		Partial: res.Partial,
	}
	if revealExact {
		out.ExactScoresIncluded = true
		out.PrivacyNotice = exactExposureNotice
	}

	for _, m := range res.Matches {
		entry := MatchEntry{
			DonorID:        string(m.Donor.ID),
			NoisyScore:     round2(m.NoisyScore),
			ScoreBreakdown: roundBreakdown(m.Breakdown),
			Explanation:    explain(m),
			CrossBorder:    m.Donor.Location != res.Recipient.Location,
		}
		if revealExact {
			exact := round3(m.Breakdown.ExactScore)
			entry.ExactScore = &exact
		}
		out.Matches = append(out.Matches, entry)
	}
	return out
}

// FromAllocations builds the allocation queue payload.
func FromAllocations(allocs []matching.Allocation) AllocationsResponse {
	out := AllocationsResponse{Allocations: make([]AllocationEntry, 0, len(allocs))}
	for _, a := range allocs {
		out.Allocations = append(out.Allocations, AllocationEntry{
			RecipientID:   string(a.RecipientID),
			OrganRequired: a.OrganRequired,
			UrgencyScore:  a.UrgencyScore,
			BestDonorID:   string(a.BestDonorID),
			Status:        string(a.Status),
		})
	}
	return out
}

// explain renders the breakdown as categorical text. It deliberately
// never embeds the exact score: explanation text reaches every viewer.
func explain(m matching.Match) string {
	parts := []string{"blood compatible"}

	switch {
	case m.Breakdown.HLA >= 0.8:
		parts = append(parts, "strong HLA match")
	case m.Breakdown.HLA >= 0.5:
		parts = append(parts, "moderate HLA match")
	default:
		parts = append(parts, "weak HLA match")
	}

	if m.Breakdown.Proximity >= 0.99 {
		parts = append(parts, "same region")
	} else if m.Breakdown.DistanceKM > 0 {
		parts = append(parts, fmt.Sprintf("%.0f km apart", m.Breakdown.DistanceKM))
	} else {
		parts = append(parts, "distance unknown")
	}

	if m.Breakdown.Urgency >= 0.8 {
		parts = append(parts, "critical urgency")
	} else if m.Breakdown.Urgency >= 0.5 {
		parts = append(parts, "elevated urgency")
	}

	return strings.Join(parts, ", ")
}

func roundBreakdown(b matching.Breakdown) matching.Breakdown {
	b.Blood = round2(b.Blood)
	b.HLA = round2(b.HLA)
	b.Proximity = round2(b.Proximity)
	b.Urgency = round2(b.Urgency)
	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
