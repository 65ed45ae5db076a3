package billing_test

import (
	"context"
	"fmt"
	"time"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/models"
)

// fakeStore is an in-memory billing.Store used by the service tests.
// It mirrors the database behavior the services rely on: NotFound errors for
// missing rows, ErrDuplicate for unique-key violations, and ID assignment on
// create. InTransaction applies the callback directly; the services are
// written to fail before mutating, which is what the tests assert.
type fakeStore struct {
	patients   map[string]models.Patient
	charges    map[string]models.Charge
	hmos       map[string]models.HMO
	encounters map[string]models.Encounter
	lines      map[string]models.EncounterCharge
	receipts   map[string]models.Receipt
	claims     map[string]models.Claim

	validations []models.ReceiptValidation
	deposits    []models.DepositTransaction
	sequences   map[int]int

	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		patients:   make(map[string]models.Patient),
		charges:    make(map[string]models.Charge),
		hmos:       make(map[string]models.HMO),
		encounters: make(map[string]models.Encounter),
		lines:      make(map[string]models.EncounterCharge),
		receipts:   make(map[string]models.Receipt),
		claims:     make(map[string]models.Claim),
		sequences:  make(map[int]int),
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%04d", f.nextID)
}

func (f *fakeStore) InTransaction(ctx context.Context, fn func(billing.Store) error) error {
	return fn(f)
}

func (f *fakeStore) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, billing.NotFoundf("patient %s not found", id)
	}
	return &p, nil
}

func (f *fakeStore) GetPatientForUpdate(ctx context.Context, id string) (*models.Patient, error) {
	return f.GetPatient(ctx, id)
}

func (f *fakeStore) SavePatient(ctx context.Context, patient *models.Patient) error {
	f.patients[patient.ID] = *patient
	return nil
}

func (f *fakeStore) CreateDepositTransaction(ctx context.Context, txn *models.DepositTransaction) error {
	txn.ID = f.id()
	f.deposits = append(f.deposits, *txn)
	return nil
}

func (f *fakeStore) ListDepositTransactions(ctx context.Context, patientID string) ([]models.DepositTransaction, error) {
	var out []models.DepositTransaction
	for _, d := range f.deposits {
		if d.PatientID == patientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCharge(ctx context.Context, id string) (*models.Charge, error) {
	c, ok := f.charges[id]
	if !ok {
		return nil, billing.NotFoundf("charge %s not found", id)
	}
	return &c, nil
}

func (f *fakeStore) GetHMO(ctx context.Context, id string) (*models.HMO, error) {
	h, ok := f.hmos[id]
	if !ok {
		return nil, billing.NotFoundf("HMO %s not found", id)
	}
	return &h, nil
}

func (f *fakeStore) GetEncounter(ctx context.Context, id string) (*models.Encounter, error) {
	e, ok := f.encounters[id]
	if !ok {
		return nil, billing.NotFoundf("encounter %s not found", id)
	}
	return &e, nil
}

func (f *fakeStore) SaveEncounter(ctx context.Context, encounter *models.Encounter) error {
	f.encounters[encounter.ID] = *encounter
	return nil
}

func (f *fakeStore) GetEncounterCharge(ctx context.Context, id string) (*models.EncounterCharge, error) {
	c, ok := f.lines[id]
	if !ok {
		return nil, billing.NotFoundf("encounter charge %s not found", id)
	}
	return &c, nil
}

func (f *fakeStore) ListEncounterCharges(ctx context.Context, encounterID string) ([]models.EncounterCharge, error) {
	var out []models.EncounterCharge
	for _, c := range f.lines {
		if c.EncounterID == encounterID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetEncounterChargesByIDs(ctx context.Context, ids []string) ([]models.EncounterCharge, error) {
	var out []models.EncounterCharge
	for _, id := range ids {
		if c, ok := f.lines[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListReceiptCharges(ctx context.Context, receiptID string) ([]models.EncounterCharge, error) {
	var out []models.EncounterCharge
	for _, c := range f.lines {
		if c.ReceiptID != nil && *c.ReceiptID == receiptID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateEncounterCharge(ctx context.Context, charge *models.EncounterCharge) error {
	charge.ID = f.id()
	if charge.CreatedAt.IsZero() {
		charge.CreatedAt = time.Now()
	}
	f.lines[charge.ID] = *charge
	return nil
}

func (f *fakeStore) SaveEncounterCharge(ctx context.Context, charge *models.EncounterCharge) error {
	f.lines[charge.ID] = *charge
	return nil
}

func (f *fakeStore) DeleteEncounterCharge(ctx context.Context, id string) error {
	delete(f.lines, id)
	return nil
}

func (f *fakeStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	for _, r := range f.receipts {
		if r.ReceiptNumber == receipt.ReceiptNumber {
			return fmt.Errorf("%w: receipt number", billing.ErrDuplicate)
		}
	}
	receipt.ID = f.id()
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now()
	}
	f.receipts[receipt.ID] = *receipt
	return nil
}

func (f *fakeStore) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	r, ok := f.receipts[id]
	if !ok {
		return nil, billing.NotFoundf("receipt %s not found", id)
	}
	return &r, nil
}

func (f *fakeStore) GetReceiptByNumber(ctx context.Context, number string) (*models.Receipt, error) {
	for _, r := range f.receipts {
		if r.ReceiptNumber == number {
			return &r, nil
		}
	}
	return nil, billing.NotFoundf("receipt %s not found", number)
}

func (f *fakeStore) SaveReceipt(ctx context.Context, receipt *models.Receipt) error {
	f.receipts[receipt.ID] = *receipt
	return nil
}

func (f *fakeStore) CreateReceiptValidation(ctx context.Context, v *models.ReceiptValidation) error {
	for _, existing := range f.validations {
		if existing.ReceiptID == v.ReceiptID && existing.UserID == v.UserID && existing.Department == v.Department {
			return fmt.Errorf("%w: receipt validation", billing.ErrDuplicate)
		}
	}
	v.ID = f.id()
	f.validations = append(f.validations, *v)
	return nil
}

func (f *fakeStore) HasReceiptValidation(ctx context.Context, receiptID, userID, department string) (bool, error) {
	for _, v := range f.validations {
		if v.ReceiptID == receiptID && v.UserID == userID && v.Department == department {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateClaim(ctx context.Context, claim *models.Claim) error {
	for _, existing := range f.claims {
		if existing.EncounterID == claim.EncounterID {
			return fmt.Errorf("%w: claim per encounter", billing.ErrDuplicate)
		}
	}
	claim.ID = f.id()
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now()
	}
	f.claims[claim.ID] = *claim
	return nil
}

func (f *fakeStore) GetClaim(ctx context.Context, id string) (*models.Claim, error) {
	c, ok := f.claims[id]
	if !ok {
		return nil, billing.NotFoundf("claim %s not found", id)
	}
	return &c, nil
}

func (f *fakeStore) GetClaimByEncounter(ctx context.Context, encounterID string) (*models.Claim, error) {
	for _, c := range f.claims {
		if c.EncounterID == encounterID {
			claim := c
			return &claim, nil
		}
	}
	return nil, billing.NotFoundf("no claim for encounter %s", encounterID)
}

func (f *fakeStore) SaveClaim(ctx context.Context, claim *models.Claim) error {
	f.claims[claim.ID] = *claim
	return nil
}

func (f *fakeStore) ListClaims(ctx context.Context, filter billing.ClaimFilter) ([]models.Claim, error) {
	var out []models.Claim
	for _, c := range f.claims {
		if filter.HMOID != "" && c.HMOID != filter.HMOID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) NextClaimSequence(ctx context.Context, year int) (int, error) {
	f.sequences[year]++
	return f.sequences[year], nil
}

func (f *fakeStore) ListPaidCharges(ctx context.Context, from, to time.Time) ([]billing.PaidCharge, error) {
	var out []billing.PaidCharge
	for _, r := range f.receipts {
		if r.Status != models.ReceiptActive {
			continue
		}
		if !from.IsZero() && r.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !r.CreatedAt.Before(to) {
			continue
		}
		for _, c := range f.lines {
			if c.ReceiptID != nil && *c.ReceiptID == r.ID && c.Status == models.ChargePaid {
				out = append(out, billing.PaidCharge{
					EncounterCharge: c,
					Method:          r.PaymentMethod,
					PaidAt:          r.CreatedAt,
				})
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListPendingCharges(ctx context.Context) ([]models.EncounterCharge, error) {
	var out []models.EncounterCharge
	for _, c := range f.lines {
		if c.Status == models.ChargePending {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) ClaimsByEncounter(ctx context.Context, encounterIDs []string) (map[string]*models.Claim, error) {
	out := make(map[string]*models.Claim)
	for _, id := range encounterIDs {
		for _, c := range f.claims {
			if c.EncounterID == id {
				claim := c
				out[id] = &claim
			}
		}
	}
	return out, nil
}

// Seeding helpers shared across the service tests.

func (f *fakeStore) addPatient(p models.Patient) models.Patient {
	if p.ID == "" {
		p.ID = f.id()
	}
	f.patients[p.ID] = p
	return p
}

func (f *fakeStore) addCharge(c models.Charge) models.Charge {
	if c.ID == "" {
		c.ID = f.id()
	}
	f.charges[c.ID] = c
	return c
}

func (f *fakeStore) addHMO(h models.HMO) models.HMO {
	if h.ID == "" {
		h.ID = f.id()
	}
	f.hmos[h.ID] = h
	return h
}

func (f *fakeStore) addEncounter(e models.Encounter) models.Encounter {
	if e.ID == "" {
		e.ID = f.id()
	}
	f.encounters[e.ID] = e
	return e
}

func (f *fakeStore) addLine(c models.EncounterCharge) models.EncounterCharge {
	if c.ID == "" {
		c.ID = f.id()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	f.lines[c.ID] = c
	return c
}
