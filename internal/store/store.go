// Package store implements billing.Store on top of GORM/MySQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/models"
)

// Store is the GORM-backed implementation of billing.Store.
type Store struct {
	db *gorm.DB
}

var _ billing.Store = (*Store)(nil)

// New creates a Store over the given database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InTransaction runs fn inside a database transaction. The callback receives
// a Store bound to the transaction handle, so every store call inside fn is
// part of the same unit of work.
func (s *Store) InTransaction(ctx context.Context, fn func(billing.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// notFound translates gorm's record-not-found into a billing NotFound error
// with entity context; other errors pass through unchanged.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return billing.NotFoundf(format, args...)
	}
	return err
}

// translate maps unique-key violations onto billing.ErrDuplicate.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", billing.ErrDuplicate, err)
	}
	return err
}

func (s *Store) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.WithContext(ctx).Preload("HMO").First(&patient, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "patient %s not found", id)
	}
	return &patient, nil
}

func (s *Store) GetPatientForUpdate(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&patient, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "patient %s not found", id)
	}
	return &patient, nil
}

func (s *Store) SavePatient(ctx context.Context, patient *models.Patient) error {
	return s.db.WithContext(ctx).Save(patient).Error
}

func (s *Store) CreateDepositTransaction(ctx context.Context, txn *models.DepositTransaction) error {
	return s.db.WithContext(ctx).Create(txn).Error
}

func (s *Store) ListDepositTransactions(ctx context.Context, patientID string) ([]models.DepositTransaction, error) {
	var txns []models.DepositTransaction
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&txns).Error
	return txns, err
}

func (s *Store) GetCharge(ctx context.Context, id string) (*models.Charge, error) {
	var charge models.Charge
	if err := s.db.WithContext(ctx).First(&charge, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "charge %s not found", id)
	}
	return &charge, nil
}

func (s *Store) GetHMO(ctx context.Context, id string) (*models.HMO, error) {
	var hmo models.HMO
	if err := s.db.WithContext(ctx).First(&hmo, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "HMO %s not found", id)
	}
	return &hmo, nil
}

func (s *Store) GetEncounter(ctx context.Context, id string) (*models.Encounter, error) {
	var encounter models.Encounter
	if err := s.db.WithContext(ctx).First(&encounter, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "encounter %s not found", id)
	}
	return &encounter, nil
}

func (s *Store) SaveEncounter(ctx context.Context, encounter *models.Encounter) error {
	return s.db.WithContext(ctx).Save(encounter).Error
}

func (s *Store) GetEncounterCharge(ctx context.Context, id string) (*models.EncounterCharge, error) {
	var charge models.EncounterCharge
	if err := s.db.WithContext(ctx).First(&charge, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "encounter charge %s not found", id)
	}
	return &charge, nil
}

func (s *Store) ListEncounterCharges(ctx context.Context, encounterID string) ([]models.EncounterCharge, error) {
	var charges []models.EncounterCharge
	err := s.db.WithContext(ctx).
		Where("encounter_id = ?", encounterID).
		Order("created_at asc").
		Find(&charges).Error
	return charges, err
}

func (s *Store) GetEncounterChargesByIDs(ctx context.Context, ids []string) ([]models.EncounterCharge, error) {
	var charges []models.EncounterCharge
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&charges).Error
	return charges, err
}

func (s *Store) ListReceiptCharges(ctx context.Context, receiptID string) ([]models.EncounterCharge, error) {
	var charges []models.EncounterCharge
	err := s.db.WithContext(ctx).Where("receipt_id = ?", receiptID).Find(&charges).Error
	return charges, err
}

func (s *Store) CreateEncounterCharge(ctx context.Context, charge *models.EncounterCharge) error {
	return s.db.WithContext(ctx).Create(charge).Error
}

func (s *Store) SaveEncounterCharge(ctx context.Context, charge *models.EncounterCharge) error {
	// Save skips nil pointer fields; use a map so a cleared receipt
	// reference is actually written back as NULL on reversal.
	return s.db.WithContext(ctx).Model(charge).Updates(map[string]interface{}{
		"quantity":        charge.Quantity,
		"total_amount":    charge.TotalAmount,
		"patient_portion": charge.PatientPortion,
		"hmo_portion":     charge.HMOPortion,
		"status":          charge.Status,
		"receipt_id":      charge.ReceiptID,
		"notes":           charge.Notes,
	}).Error
}

func (s *Store) DeleteEncounterCharge(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.EncounterCharge{}, "id = ?", id).Error
}

func (s *Store) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	return translate(s.db.WithContext(ctx).Create(receipt).Error)
}

func (s *Store) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := s.db.WithContext(ctx).
		Preload("Charges").
		Preload("Validations").
		First(&receipt, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "receipt %s not found", id)
	}
	return &receipt, nil
}

func (s *Store) GetReceiptByNumber(ctx context.Context, number string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := s.db.WithContext(ctx).
		Preload("Charges").
		Preload("Validations").
		First(&receipt, "receipt_number = ?", number).Error
	if err != nil {
		return nil, notFound(err, "receipt %s not found", number)
	}
	return &receipt, nil
}

func (s *Store) SaveReceipt(ctx context.Context, receipt *models.Receipt) error {
	return s.db.WithContext(ctx).Model(receipt).Updates(map[string]interface{}{
		"status":    receipt.Status,
		"voided_at": receipt.VoidedAt,
	}).Error
}

func (s *Store) CreateReceiptValidation(ctx context.Context, v *models.ReceiptValidation) error {
	return translate(s.db.WithContext(ctx).Create(v).Error)
}

func (s *Store) HasReceiptValidation(ctx context.Context, receiptID, userID, department string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ReceiptValidation{}).
		Where("receipt_id = ? AND user_id = ? AND department = ?", receiptID, userID, department).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) CreateClaim(ctx context.Context, claim *models.Claim) error {
	return translate(s.db.WithContext(ctx).Create(claim).Error)
}

func (s *Store) GetClaim(ctx context.Context, id string) (*models.Claim, error) {
	var claim models.Claim
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("HMO").
		First(&claim, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "claim %s not found", id)
	}
	return &claim, nil
}

func (s *Store) GetClaimByEncounter(ctx context.Context, encounterID string) (*models.Claim, error) {
	var claim models.Claim
	err := s.db.WithContext(ctx).First(&claim, "encounter_id = ?", encounterID).Error
	if err != nil {
		return nil, notFound(err, "no claim for encounter %s", encounterID)
	}
	return &claim, nil
}

func (s *Store) SaveClaim(ctx context.Context, claim *models.Claim) error {
	return s.db.WithContext(ctx).Model(claim).Updates(map[string]interface{}{
		"status":           claim.Status,
		"submitted_date":   claim.SubmittedDate,
		"approved_date":    claim.ApprovedDate,
		"paid_date":        claim.PaidDate,
		"rejection_reason": claim.RejectionReason,
		"notes":            claim.Notes,
	}).Error
}

func (s *Store) ListClaims(ctx context.Context, filter billing.ClaimFilter) ([]models.Claim, error) {
	q := s.db.WithContext(ctx).Preload("HMO").Order("created_at desc")
	if filter.HMOID != "" {
		q = q.Where("hmo_id = ?", filter.HMOID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}

	var claims []models.Claim
	err := q.Find(&claims).Error
	return claims, err
}

// NextClaimSequence increments the year-scoped claim counter under a row
// lock. The first claim of a year creates the row; a racing creator loses on
// the primary key and retries the locked read.
func (s *Store) NextClaimSequence(ctx context.Context, year int) (int, error) {
	db := s.db.WithContext(ctx)

	var seq models.ClaimSequence
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seq, "year = ?", year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.ClaimSequence{Year: year, Value: 1}
		if createErr := db.Create(&seq).Error; createErr != nil {
			if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return 0, createErr
			}
			if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seq, "year = ?", year).Error; err != nil {
				return 0, err
			}
		} else {
			return seq.Value, nil
		}
	} else if err != nil {
		return 0, err
	}

	seq.Value++
	if err := db.Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// ListPaidCharges flattens active receipts in the window into charge rows
// joined with their payment method and payment time.
func (s *Store) ListPaidCharges(ctx context.Context, from, to time.Time) ([]billing.PaidCharge, error) {
	q := s.db.WithContext(ctx).
		Preload("Charges").
		Where("status = ?", models.ReceiptActive)
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}

	var receipts []models.Receipt
	if err := q.Find(&receipts).Error; err != nil {
		return nil, err
	}

	var out []billing.PaidCharge
	for _, r := range receipts {
		for _, c := range r.Charges {
			if c.Status != models.ChargePaid {
				continue
			}
			out = append(out, billing.PaidCharge{
				EncounterCharge: c,
				Method:          r.PaymentMethod,
				PaidAt:          r.CreatedAt,
			})
		}
	}
	return out, nil
}

func (s *Store) ListPendingCharges(ctx context.Context) ([]models.EncounterCharge, error) {
	var charges []models.EncounterCharge
	err := s.db.WithContext(ctx).Where("status = ?", models.ChargePending).Find(&charges).Error
	return charges, err
}

func (s *Store) ClaimsByEncounter(ctx context.Context, encounterIDs []string) (map[string]*models.Claim, error) {
	var claims []models.Claim
	err := s.db.WithContext(ctx).Where("encounter_id IN ?", encounterIDs).Find(&claims).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]*models.Claim, len(claims))
	for i := range claims {
		out[claims[i].EncounterID] = &claims[i]
	}
	return out, nil
}
