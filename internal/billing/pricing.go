package billing

import (
	"math"

	"hospital-billing-server/internal/models"
)

// drugCoPayRate is the patient co-pay on drugs for NHIA/KSCHMA patients.
const drugCoPayRate = 0.10

// PricedAmount is the result of resolving a charge against a provider tier.
// PatientPortion + HMOPortion == TotalAmount always holds: the HMO portion is
// derived from the patient portion, never computed independently.
type PricedAmount struct {
	UnitPrice      float64 `json:"unitPrice"`
	TotalAmount    float64 `json:"totalAmount"`
	PatientPortion float64 `json:"patientPortion"`
	HMOPortion     float64 `json:"hmoPortion"`
}

// ResolvePrice selects the tier fee from the master price list entry and
// splits the total between patient and insurer. A tier fee of exactly zero
// falls back to the base price.
func ResolvePrice(charge *models.Charge, tier models.ProviderTier, quantity int) PricedAmount {
	fee := tierFee(charge, tier)
	if fee == 0 {
		fee = charge.BasePrice
	}
	return SplitAmount(fee, quantity, tier, charge.Category)
}

// SplitAmount prices a line from an already-resolved unit price. Used for
// ad-hoc charges that have no master price list entry.
func SplitAmount(unitPrice float64, quantity int, tier models.ProviderTier, category models.ChargeCategory) PricedAmount {
	total := round2(unitPrice * float64(quantity))
	patient := patientShare(total, tier, category)
	return PricedAmount{
		UnitPrice:      unitPrice,
		TotalAmount:    total,
		PatientPortion: patient,
		HMOPortion:     total - patient,
	}
}

func tierFee(charge *models.Charge, tier models.ProviderTier) float64 {
	switch tier {
	case models.TierStandard:
		return charge.StandardFee
	case models.TierRetainership:
		return charge.RetainershipFee
	case models.TierNHIA:
		return charge.NHIAFee
	case models.TierKSCHMA:
		return charge.KSCHMAFee
	}
	return charge.StandardFee
}

func patientShare(total float64, tier models.ProviderTier, category models.ChargeCategory) float64 {
	switch tier {
	case models.TierRetainership:
		return 0
	case models.TierNHIA, models.TierKSCHMA:
		if category == models.CategoryDrugs {
			return round2(total * drugCoPayRate)
		}
		return 0
	}
	// Standard and anything unrecognized: the patient pays everything.
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
