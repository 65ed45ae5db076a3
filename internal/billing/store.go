// Package billing contains the pricing, ledger, payment, claim and revenue
// logic of the hospital billing engine. All persistence goes through the
// Store interface; the GORM implementation lives in internal/store.
package billing

import (
	"context"
	"errors"
	"time"

	"hospital-billing-server/internal/models"
)

// ErrDuplicate is returned by Store implementations when an insert violates
// a unique constraint (receipt number, one claim per encounter, validation
// uniqueness). Services translate it into a Conflict or an idempotent no-op.
var ErrDuplicate = errors.New("duplicate key")

// Store is the persistence surface the billing services depend on.
// Every method that backs a multi-entity mutation is expected to be called
// inside InTransaction; implementations must make the callback atomic.
type Store interface {
	// InTransaction runs fn against a transactional view of the store.
	// If fn returns an error every write made through that view is rolled
	// back.
	InTransaction(ctx context.Context, fn func(Store) error) error

	patientStore
	masterDataStore
	encounterStore
	ledgerStore
	receiptStore
	claimStore
	reportStore
}

type patientStore interface {
	GetPatient(ctx context.Context, id string) (*models.Patient, error)

	// GetPatientForUpdate loads the patient row under a write lock so a
	// deposit debit/credit cannot be lost to a concurrent payment.
	GetPatientForUpdate(ctx context.Context, id string) (*models.Patient, error)

	SavePatient(ctx context.Context, patient *models.Patient) error

	CreateDepositTransaction(ctx context.Context, txn *models.DepositTransaction) error
	ListDepositTransactions(ctx context.Context, patientID string) ([]models.DepositTransaction, error)
}

type masterDataStore interface {
	GetCharge(ctx context.Context, id string) (*models.Charge, error)
	GetHMO(ctx context.Context, id string) (*models.HMO, error)
}

type encounterStore interface {
	GetEncounter(ctx context.Context, id string) (*models.Encounter, error)
	SaveEncounter(ctx context.Context, encounter *models.Encounter) error
}

type ledgerStore interface {
	GetEncounterCharge(ctx context.Context, id string) (*models.EncounterCharge, error)
	ListEncounterCharges(ctx context.Context, encounterID string) ([]models.EncounterCharge, error)
	GetEncounterChargesByIDs(ctx context.Context, ids []string) ([]models.EncounterCharge, error)
	ListReceiptCharges(ctx context.Context, receiptID string) ([]models.EncounterCharge, error)
	CreateEncounterCharge(ctx context.Context, charge *models.EncounterCharge) error
	SaveEncounterCharge(ctx context.Context, charge *models.EncounterCharge) error
	DeleteEncounterCharge(ctx context.Context, id string) error
}

type receiptStore interface {
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error
	GetReceipt(ctx context.Context, id string) (*models.Receipt, error)
	GetReceiptByNumber(ctx context.Context, number string) (*models.Receipt, error)
	SaveReceipt(ctx context.Context, receipt *models.Receipt) error

	CreateReceiptValidation(ctx context.Context, v *models.ReceiptValidation) error
	HasReceiptValidation(ctx context.Context, receiptID, userID, department string) (bool, error)
}

// ClaimFilter narrows claim listings for reporting and the claims desk.
type ClaimFilter struct {
	HMOID  string
	Status models.ClaimStatus
	From   time.Time
	To     time.Time
}

type claimStore interface {
	CreateClaim(ctx context.Context, claim *models.Claim) error
	GetClaim(ctx context.Context, id string) (*models.Claim, error)
	GetClaimByEncounter(ctx context.Context, encounterID string) (*models.Claim, error)
	SaveClaim(ctx context.Context, claim *models.Claim) error
	ListClaims(ctx context.Context, filter ClaimFilter) ([]models.Claim, error)

	// NextClaimSequence atomically increments and returns the year-scoped
	// claim counter. Must be called inside the claim transaction.
	NextClaimSequence(ctx context.Context, year int) (int, error)
}

// PaidCharge is a ledger line joined with the receipt that settled it.
type PaidCharge struct {
	models.EncounterCharge
	Method models.PaymentMethod
	PaidAt time.Time
}

type reportStore interface {
	// ListPaidCharges returns charges settled by active (non-voided)
	// receipts whose payment time falls in [from, to). Zero times mean
	// unbounded.
	ListPaidCharges(ctx context.Context, from, to time.Time) ([]PaidCharge, error)

	ListPendingCharges(ctx context.Context) ([]models.EncounterCharge, error)

	// ClaimsByEncounter returns the claim for each of the given encounters,
	// keyed by encounter ID. Encounters without a claim are absent.
	ClaimsByEncounter(ctx context.Context, encounterIDs []string) (map[string]*models.Claim, error)
}
