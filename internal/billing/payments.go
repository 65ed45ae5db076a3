package billing

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"hospital-billing-server/internal/models"
)

// receiptNumberAttempts bounds the retry loop on a receipt-number collision.
const receiptNumberAttempts = 3

// PaymentService settles pending charges into receipts and reverses them.
// Every mutation runs inside a single store transaction: the receipt, the
// charge status flips, the deposit movement and the encounter stage advance
// all commit or none do.
type PaymentService struct {
	store Store
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store Store) *PaymentService {
	return &PaymentService{store: store}
}

// CollectInput describes one payment event.
type CollectInput struct {
	EncounterID string
	ChargeIDs   []string
	Method      models.PaymentMethod
	CashierID   string
}

// Collect converts a set of pending charges into a receipt. For deposit
// payments the patient's balance is debited under a row lock and the whole
// operation fails fast with InsufficientFunds before anything is written.
func (s *PaymentService) Collect(ctx context.Context, in CollectInput) (*models.Receipt, error) {
	if len(in.ChargeIDs) == 0 {
		return nil, Validationf("at least one charge is required")
	}

	var receipt *models.Receipt
	err := s.store.InTransaction(ctx, func(tx Store) error {
		encounter, err := tx.GetEncounter(ctx, in.EncounterID)
		if err != nil {
			return err
		}

		charges, err := tx.GetEncounterChargesByIDs(ctx, in.ChargeIDs)
		if err != nil {
			return err
		}
		if len(charges) == 0 {
			return NotFoundf("no charges found for payment")
		}
		if len(charges) != len(in.ChargeIDs) {
			return NotFoundf("%d of %d charges not found", len(in.ChargeIDs)-len(charges), len(in.ChargeIDs))
		}

		var amountDue float64
		for i := range charges {
			c := &charges[i]
			if c.EncounterID != encounter.ID {
				return Validationf("charge %s does not belong to encounter %s", c.ID, encounter.ID)
			}
			if c.Status != models.ChargePending {
				return InvalidStatef("charge %q is already %s", c.ItemName, c.Status)
			}
			amountDue += c.TotalAmount
		}
		amountDue = round2(amountDue)

		var patient *models.Patient
		if in.Method == models.MethodDeposit {
			patient, err = tx.GetPatientForUpdate(ctx, encounter.PatientID)
			if err != nil {
				return err
			}
			if patient.DepositBalance < amountDue {
				return InsufficientFunds(amountDue, patient.DepositBalance)
			}
		}

		receipt, err = s.createReceiptWithNumber(ctx, tx, &models.Receipt{
			PatientID:     encounter.PatientID,
			EncounterID:   encounter.ID,
			AmountPaid:    amountDue,
			PaymentMethod: in.Method,
			CashierID:     in.CashierID,
			Status:        models.ReceiptActive,
		})
		if err != nil {
			return err
		}

		if in.Method == models.MethodDeposit {
			patient.DepositBalance = round2(patient.DepositBalance - amountDue)
			if err := tx.SavePatient(ctx, patient); err != nil {
				return err
			}
			audit := &models.DepositTransaction{
				PatientID:   patient.ID,
				Amount:      -amountDue,
				Kind:        models.DepositPayment,
				ReceiptID:   &receipt.ID,
				PerformedBy: in.CashierID,
			}
			if err := tx.CreateDepositTransaction(ctx, audit); err != nil {
				return err
			}
		}

		for i := range charges {
			charges[i].Status = models.ChargePaid
			charges[i].ReceiptID = &receipt.ID
			if err := tx.SaveEncounterCharge(ctx, &charges[i]); err != nil {
				return err
			}
		}

		encounter.AdvanceStage()
		return tx.SaveEncounter(ctx, encounter)
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Reverse voids a receipt, restores the deposit balance when the payment was
// drawn from it, and reverts every settled charge back to pending with its
// receipt reference cleared — all in one transaction.
func (s *PaymentService) Reverse(ctx context.Context, receiptID, userID string) (*models.Receipt, error) {
	var receipt *models.Receipt
	err := s.store.InTransaction(ctx, func(tx Store) error {
		var err error
		receipt, err = tx.GetReceipt(ctx, receiptID)
		if err != nil {
			return err
		}
		if receipt.Status == models.ReceiptVoided {
			return InvalidStatef("receipt %s has already been reversed", receipt.ReceiptNumber)
		}

		charges, err := tx.ListReceiptCharges(ctx, receipt.ID)
		if err != nil {
			return err
		}
		for i := range charges {
			charges[i].Status = models.ChargePending
			charges[i].ReceiptID = nil
			if err := tx.SaveEncounterCharge(ctx, &charges[i]); err != nil {
				return err
			}
		}

		if receipt.PaymentMethod == models.MethodDeposit {
			patient, err := tx.GetPatientForUpdate(ctx, receipt.PatientID)
			if err != nil {
				return err
			}
			patient.DepositBalance = round2(patient.DepositBalance + receipt.AmountPaid)
			if err := tx.SavePatient(ctx, patient); err != nil {
				return err
			}
			audit := &models.DepositTransaction{
				PatientID:   patient.ID,
				Amount:      receipt.AmountPaid,
				Kind:        models.DepositReversal,
				ReceiptID:   &receipt.ID,
				PerformedBy: userID,
			}
			if err := tx.CreateDepositTransaction(ctx, audit); err != nil {
				return err
			}
		}

		now := time.Now()
		receipt.Status = models.ReceiptVoided
		receipt.VoidedAt = &now
		return tx.SaveReceipt(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Validate idempotently records that a department has sighted a paid receipt.
// Re-validating with the same user and department is a success, not an error.
func (s *PaymentService) Validate(ctx context.Context, receiptNumber, department, userID string) (*models.Receipt, error) {
	if department == "" {
		return nil, Validationf("department is required")
	}

	receipt, err := s.store.GetReceiptByNumber(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	if receipt.Status == models.ReceiptVoided {
		return nil, InvalidStatef("receipt %s has been reversed", receipt.ReceiptNumber)
	}

	exists, err := s.store.HasReceiptValidation(ctx, receipt.ID, userID, department)
	if err != nil {
		return nil, err
	}
	if exists {
		return receipt, nil
	}

	v := &models.ReceiptValidation{
		ReceiptID:  receipt.ID,
		UserID:     userID,
		Department: department,
	}
	if err := s.store.CreateReceiptValidation(ctx, v); err != nil {
		// A concurrent identical validation is the idempotent case.
		if errors.Is(err, ErrDuplicate) {
			return receipt, nil
		}
		return nil, err
	}
	return receipt, nil
}

// TopUpDeposit credits a patient's deposit wallet and writes the audit row.
func (s *PaymentService) TopUpDeposit(ctx context.Context, patientID string, amount float64, userID, notes string) (*models.Patient, error) {
	if amount <= 0 {
		return nil, Validationf("top-up amount must be greater than zero")
	}

	var patient *models.Patient
	err := s.store.InTransaction(ctx, func(tx Store) error {
		var err error
		patient, err = tx.GetPatientForUpdate(ctx, patientID)
		if err != nil {
			return err
		}
		patient.DepositBalance = round2(patient.DepositBalance + amount)
		if err := tx.SavePatient(ctx, patient); err != nil {
			return err
		}
		audit := &models.DepositTransaction{
			PatientID:   patient.ID,
			Amount:      amount,
			Kind:        models.DepositTopUp,
			PerformedBy: userID,
			Notes:       notes,
		}
		return tx.CreateDepositTransaction(ctx, audit)
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// createReceiptWithNumber inserts the receipt, regenerating the number on a
// unique-index collision. Uniqueness is enforced by the index, not by the
// randomness of the suffix.
func (s *PaymentService) createReceiptWithNumber(ctx context.Context, tx Store, receipt *models.Receipt) (*models.Receipt, error) {
	for attempt := 0; attempt < receiptNumberAttempts; attempt++ {
		receipt.ReceiptNumber = GenerateReceiptNumber()
		err := tx.CreateReceipt(ctx, receipt)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return nil, err
		}
	}
	return nil, Conflictf("could not allocate a unique receipt number")
}

// GenerateReceiptNumber builds a receipt number from the current time plus a
// random suffix, e.g. RCP17259841234560042.
func GenerateReceiptNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("RCP%d%04d", time.Now().UnixMilli(), suffix)
}
