// Package trust computes an explainable provider trust score. Every
// ranking decision has to be justifiable to the end user, so the full
// breakdown travels with the composite score.
package trust

import "providerhub-backend/internal/model"

// Stats counts a provider's job activity.
type Stats struct {
	Accepted  int `json:"accepted"`
	Completed int `json:"completed"`
}

// Review is a single rating on the 1-5 scale.
type Review struct {
	Rating float64 `json:"rating"`
}

// Context carries the correlated signals the scorer needs beyond the
// provider record itself. The zero value is valid: missing signals score
// zero rather than erroring.
type Context struct {
	Stats        *Stats
	Reviews      []Review
	ResponseRate float64 // 0..1
	Incidents    int
}

// Breakdown exposes every sub-score plus the pre-clamp raw composite.
type Breakdown struct {
	Verification      float64 `json:"verification_score"`
	JobCompletion     float64 `json:"job_completion_score"`
	Review            float64 `json:"review_score"`
	ResponseRate      float64 `json:"response_rate_score"`
	AddressConfidence float64 `json:"address_confidence_score"`
	IncidentPenalty   float64 `json:"incident_penalty"`
	Raw               float64 `json:"raw"`
}

// Result is the composite trust score with its breakdown.
type Result struct {
	TrustScore float64   `json:"trust_score"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Composite weights. The incident penalty subtracts.
const (
	weightVerification      = 0.25
	weightJobCompletion     = 0.20
	weightReview            = 0.20
	weightResponseRate      = 0.15
	weightAddressConfidence = 0.10
	weightIncidentPenalty   = 0.20
)

// Compute scores a provider from its record and the surrounding context.
func Compute(p model.Provider, ctx Context) Result {
	b := Breakdown{
		Verification:      VerificationScore(p),
		JobCompletion:     completionScore(ctx.Stats),
		Review:            reviewScore(ctx.Reviews),
		ResponseRate:      clamp01(ctx.ResponseRate),
		AddressConfidence: addressConfidenceScore(p),
		IncidentPenalty:   incidentPenalty(ctx.Incidents),
	}
	b.Raw = weightVerification*b.Verification +
		weightJobCompletion*b.JobCompletion +
		weightReview*b.Review +
		weightResponseRate*b.ResponseRate +
		weightAddressConfidence*b.AddressConfidence -
		weightIncidentPenalty*b.IncidentPenalty

	return Result{TrustScore: clamp01(b.Raw), Breakdown: b}
}

// VerificationScore maps the verification tier: trusted 1, basic 0.5,
// everything else 0.
func VerificationScore(p model.Provider) float64 {
	switch p.VerificationLevel {
	case model.VerificationTrusted:
		return 1
	case model.VerificationBasic:
		return 0.5
	default:
		return 0
	}
}

// completionScore is completed/accepted. No accepted jobs scores 0, not
// undefined.
func completionScore(s *Stats) float64 {
	if s == nil || s.Accepted <= 0 {
		return 0
	}
	return clamp01(float64(s.Completed) / float64(s.Accepted))
}

// reviewScore maps the mean 1-5 rating onto 0..1. No reviews scores 0.
func reviewScore(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := sum / float64(len(reviews))
	return clamp01((avg - 1) / 4)
}

func addressConfidenceScore(p model.Provider) float64 {
	if p.AddressConfidence == nil {
		return 0
	}
	return clamp01(*p.AddressConfidence / 100)
}

// incidentPenalty charges 0.2 per incident, saturating after five.
func incidentPenalty(incidents int) float64 {
	if incidents <= 0 {
		return 0
	}
	return clamp01(float64(incidents) * 0.2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
