package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospital-billing-server/internal/models"
)

// ClaimService builds insurer claims from settled encounter charges and
// tracks their lifecycle.
type ClaimService struct {
	store Store
}

// NewClaimService creates a new ClaimService.
func NewClaimService(store Store) *ClaimService {
	return &ClaimService{store: store}
}

// Generate builds a claim for an encounter. Only patients on an insured
// provider tier with an HMO assigned are claimable, and each encounter can be
// claimed exactly once; the loser of a concurrent attempt gets a Conflict.
//
// Item amounts are snapshots of the stored ledger portions. An encounter with
// no charges yields an accepted claim with zero total and no items.
func (s *ClaimService) Generate(ctx context.Context, encounterID string) (*models.Claim, error) {
	var claim *models.Claim
	err := s.store.InTransaction(ctx, func(tx Store) error {
		encounter, err := tx.GetEncounter(ctx, encounterID)
		if err != nil {
			return err
		}
		patient, err := tx.GetPatient(ctx, encounter.PatientID)
		if err != nil {
			return err
		}
		if !patient.Provider.Insured() {
			return InvalidStatef("provider tier %s is not claimable", patient.Provider)
		}
		if patient.HMOID == nil || *patient.HMOID == "" {
			return InvalidStatef("patient %s has no HMO assigned", patient.HospitalNumber)
		}
		hmo, err := tx.GetHMO(ctx, *patient.HMOID)
		if err != nil {
			return err
		}

		if existing, err := tx.GetClaimByEncounter(ctx, encounterID); err == nil {
			return Conflictf("claim %s already exists for this encounter", existing.ClaimNumber)
		} else if KindOf(err) != KindNotFound {
			return err
		}

		charges, err := tx.ListEncounterCharges(ctx, encounterID)
		if err != nil {
			return err
		}
		items, total := BuildClaimItems(charges, patient.Provider)

		year := time.Now().Year()
		seq, err := tx.NextClaimSequence(ctx, year)
		if err != nil {
			return err
		}

		claim = &models.Claim{
			ClaimNumber:      FormatClaimNumber(year, seq),
			PatientID:        patient.ID,
			HMOID:            hmo.ID,
			EncounterID:      encounter.ID,
			TotalClaimAmount: total,
			Status:           models.ClaimPending,
			Items:            items,
		}
		if err := tx.CreateClaim(ctx, claim); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return Conflictf("a claim already exists for this encounter")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// SetStatusInput updates a claim's lifecycle state.
type SetStatusInput struct {
	Status          models.ClaimStatus
	RejectionReason string
	Notes           string
}

// SetStatus moves a claim to a new status. The submitted/approved/paid dates
// are stamped the first time the claim reaches that status; re-setting the
// same status does not re-stamp. Rejection requires a reason. Transitions are
// otherwise unconstrained.
func (s *ClaimService) SetStatus(ctx context.Context, claimID string, in SetStatusInput) (*models.Claim, error) {
	switch in.Status {
	case models.ClaimPending, models.ClaimSubmitted, models.ClaimApproved, models.ClaimPaid, models.ClaimRejected:
	default:
		return nil, Validationf("unknown claim status %q", in.Status)
	}
	if in.Status == models.ClaimRejected && in.RejectionReason == "" {
		return nil, Validationf("a rejection reason is required")
	}

	claim, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	switch in.Status {
	case models.ClaimSubmitted:
		if claim.SubmittedDate == nil {
			claim.SubmittedDate = &now
		}
	case models.ClaimApproved:
		if claim.ApprovedDate == nil {
			claim.ApprovedDate = &now
		}
	case models.ClaimPaid:
		if claim.PaidDate == nil {
			claim.PaidDate = &now
		}
	}

	claim.Status = in.Status
	if in.RejectionReason != "" {
		claim.RejectionReason = in.RejectionReason
	}
	if in.Notes != "" {
		claim.Notes = in.Notes
	}

	if err := s.store.SaveClaim(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// Get returns one claim.
func (s *ClaimService) Get(ctx context.Context, claimID string) (*models.Claim, error) {
	return s.store.GetClaim(ctx, claimID)
}

// List returns claims matching the filter.
func (s *ClaimService) List(ctx context.Context, filter ClaimFilter) ([]models.Claim, error) {
	return s.store.ListClaims(ctx, filter)
}

// BuildClaimItems snapshots the non-cancelled ledger lines of an encounter
// into claim items and returns them with the claim total (the sum of HMO
// portions).
func BuildClaimItems(charges []models.EncounterCharge, tier models.ProviderTier) ([]models.ClaimItem, float64) {
	items := make([]models.ClaimItem, 0, len(charges))
	var total float64
	for _, c := range charges {
		if c.Status == models.ChargeCancelled {
			continue
		}
		patient, hmo := portionsOrFallback(c, tier)
		items = append(items, models.ClaimItem{
			Description:    c.ItemName,
			Category:       c.ItemCategory,
			Quantity:       c.Quantity,
			UnitPrice:      c.UnitPrice,
			TotalAmount:    c.TotalAmount,
			PatientPortion: patient,
			HMOPortion:     hmo,
		})
		total += hmo
	}
	return items, round2(total)
}

// portionsOrFallback returns the stored split for a ledger line. Rows written
// before portions were recorded carry zeros in both fields; only those legacy
// rows are re-split with the current tier rules.
func portionsOrFallback(c models.EncounterCharge, tier models.ProviderTier) (patient, hmo float64) {
	if c.PatientPortion == 0 && c.HMOPortion == 0 && c.TotalAmount != 0 {
		patient = patientShare(c.TotalAmount, tier, c.ItemCategory)
		return patient, c.TotalAmount - patient
	}
	return c.PatientPortion, c.HMOPortion
}

// FormatClaimNumber renders a year-scoped claim number, e.g. CLM-2026-0042.
func FormatClaimNumber(year, seq int) string {
	return fmt.Sprintf("CLM-%d-%04d", year, seq)
}
