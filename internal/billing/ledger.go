package billing

import (
	"context"

	"hospital-billing-server/internal/models"
)

// LedgerService manages the append-only set of charges attached to an
// encounter. Lines are mutable only while pending; settlement is owned by
// PaymentService.
type LedgerService struct {
	store Store
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store Store) *LedgerService {
	return &LedgerService{store: store}
}

// AddChargeInput adds a line priced from the master price list.
type AddChargeInput struct {
	EncounterID string
	ChargeID    string
	Quantity    int
	Notes       string
	OrderedBy   string
}

// AddAdhocChargeInput adds a line with no master reference; name, category
// and unit price are snapshotted from the input.
type AddAdhocChargeInput struct {
	EncounterID string
	ItemName    string
	Category    models.ChargeCategory
	UnitPrice   float64
	Quantity    int
	Notes       string
	OrderedBy   string
}

// AddCharge resolves pricing for a master price list item against the
// patient's provider tier and appends a pending ledger line.
func (s *LedgerService) AddCharge(ctx context.Context, in AddChargeInput) (*models.EncounterCharge, error) {
	if in.Quantity < 1 {
		return nil, Validationf("quantity must be at least 1")
	}

	encounter, err := s.store.GetEncounter(ctx, in.EncounterID)
	if err != nil {
		return nil, err
	}
	patient, err := s.store.GetPatient(ctx, encounter.PatientID)
	if err != nil {
		return nil, err
	}
	charge, err := s.store.GetCharge(ctx, in.ChargeID)
	if err != nil {
		return nil, err
	}
	if !charge.IsActive {
		return nil, InvalidStatef("charge %q is no longer active", charge.Name)
	}

	priced := ResolvePrice(charge, patient.Provider, in.Quantity)
	line := &models.EncounterCharge{
		EncounterID:    encounter.ID,
		PatientID:      patient.ID,
		ChargeID:       &charge.ID,
		ItemName:       charge.Name,
		ItemCategory:   charge.Category,
		Quantity:       in.Quantity,
		UnitPrice:      priced.UnitPrice,
		TotalAmount:    priced.TotalAmount,
		PatientPortion: priced.PatientPortion,
		HMOPortion:     priced.HMOPortion,
		Status:         models.ChargePending,
		Notes:          in.Notes,
		OrderedByID:    in.OrderedBy,
	}
	if err := s.store.CreateEncounterCharge(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// AddAdhocCharge appends a pending ledger line for a service that has no
// master price list entry. The split rules are the same as for master items.
func (s *LedgerService) AddAdhocCharge(ctx context.Context, in AddAdhocChargeInput) (*models.EncounterCharge, error) {
	if in.Quantity < 1 {
		return nil, Validationf("quantity must be at least 1")
	}
	if in.ItemName == "" {
		return nil, Validationf("item name is required for an ad-hoc charge")
	}
	if in.UnitPrice <= 0 {
		return nil, Validationf("unit price must be greater than zero")
	}

	encounter, err := s.store.GetEncounter(ctx, in.EncounterID)
	if err != nil {
		return nil, err
	}
	patient, err := s.store.GetPatient(ctx, encounter.PatientID)
	if err != nil {
		return nil, err
	}

	priced := SplitAmount(in.UnitPrice, in.Quantity, patient.Provider, in.Category)
	line := &models.EncounterCharge{
		EncounterID:    encounter.ID,
		PatientID:      patient.ID,
		ItemName:       in.ItemName,
		ItemCategory:   in.Category,
		Quantity:       in.Quantity,
		UnitPrice:      priced.UnitPrice,
		TotalAmount:    priced.TotalAmount,
		PatientPortion: priced.PatientPortion,
		HMOPortion:     priced.HMOPortion,
		Status:         models.ChargePending,
		Notes:          in.Notes,
		OrderedByID:    in.OrderedBy,
	}
	if err := s.store.CreateEncounterCharge(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateCharge changes quantity and/or notes on a pending line. The total is
// recomputed from the stored unit price and the stored split ratio is scaled
// to the new total; current master fees and tier rules are never consulted.
func (s *LedgerService) UpdateCharge(ctx context.Context, id string, quantity *int, notes *string) (*models.EncounterCharge, error) {
	line, err := s.store.GetEncounterCharge(ctx, id)
	if err != nil {
		return nil, err
	}
	if line.Status != models.ChargePending {
		return nil, InvalidStatef("cannot update a %s charge", line.Status)
	}

	if quantity != nil {
		if *quantity < 1 {
			return nil, Validationf("quantity must be at least 1")
		}
		oldTotal := line.TotalAmount
		line.Quantity = *quantity
		line.TotalAmount = round2(line.UnitPrice * float64(*quantity))
		line.PatientPortion = scalePortion(line.PatientPortion, oldTotal, line.TotalAmount)
		line.HMOPortion = line.TotalAmount - line.PatientPortion
	}
	if notes != nil {
		line.Notes = *notes
	}

	if err := s.store.SaveEncounterCharge(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// CancelCharge soft-cancels a pending line, keeping it for audit.
func (s *LedgerService) CancelCharge(ctx context.Context, id string) (*models.EncounterCharge, error) {
	line, err := s.store.GetEncounterCharge(ctx, id)
	if err != nil {
		return nil, err
	}
	if line.Status != models.ChargePending {
		return nil, InvalidStatef("cannot cancel a %s charge", line.Status)
	}
	line.Status = models.ChargeCancelled
	if err := s.store.SaveEncounterCharge(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteCharge removes a pending line entirely.
func (s *LedgerService) DeleteCharge(ctx context.Context, id string) error {
	line, err := s.store.GetEncounterCharge(ctx, id)
	if err != nil {
		return err
	}
	if line.Status != models.ChargePending {
		return InvalidStatef("cannot delete a %s charge", line.Status)
	}
	return s.store.DeleteEncounterCharge(ctx, id)
}

// ListForEncounter returns all ledger lines for an encounter.
func (s *LedgerService) ListForEncounter(ctx context.Context, encounterID string) ([]models.EncounterCharge, error) {
	if _, err := s.store.GetEncounter(ctx, encounterID); err != nil {
		return nil, err
	}
	return s.store.ListEncounterCharges(ctx, encounterID)
}

// scalePortion keeps the original patient/HMO split ratio when a pending
// line's quantity changes.
func scalePortion(portion, oldTotal, newTotal float64) float64 {
	if oldTotal == 0 {
		return 0
	}
	return round2(portion / oldTotal * newTotal)
}
