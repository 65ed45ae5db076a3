package billing_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/models"
)

type claimFixture struct {
	store     *fakeStore
	service   *billing.ClaimService
	hmo       models.HMO
	patient   models.Patient
	encounter models.Encounter
}

func newClaimFixture(t *testing.T, tier models.ProviderTier) *claimFixture {
	t.Helper()
	store := newFakeStore()
	hmo := store.addHMO(models.HMO{Name: "Crestline Health", Code: "CRST", IsActive: true})
	patient := models.Patient{
		HospitalNumber: "HN-0003",
		FirstName:      "Chidi",
		LastName:       "Eze",
		Provider:       tier,
	}
	if tier.Insured() {
		patient.HMOID = &hmo.ID
		patient.HMOMemberID = "CRST-118822"
	}
	patient = store.addPatient(patient)
	encounter := store.addEncounter(models.Encounter{
		PatientID: patient.ID,
		Stage:     models.StageService,
	})
	return &claimFixture{
		store:     store,
		service:   billing.NewClaimService(store),
		hmo:       hmo,
		patient:   patient,
		encounter: encounter,
	}
}

func TestGenerateClaim(t *testing.T) {
	fx := newClaimFixture(t, models.TierNHIA)
	ctx := context.Background()

	fx.store.addLine(models.EncounterCharge{
		EncounterID:    fx.encounter.ID,
		PatientID:      fx.patient.ID,
		ItemName:       "Consultation",
		ItemCategory:   models.CategoryConsultation,
		Quantity:       1,
		UnitPrice:      30,
		TotalAmount:    30,
		PatientPortion: 0,
		HMOPortion:     30,
		Status:         models.ChargePaid,
	})
	fx.store.addLine(models.EncounterCharge{
		EncounterID:    fx.encounter.ID,
		PatientID:      fx.patient.ID,
		ItemName:       "Antimalarial",
		ItemCategory:   models.CategoryDrugs,
		Quantity:       3,
		UnitPrice:      20,
		TotalAmount:    60,
		PatientPortion: 6,
		HMOPortion:     54,
		Status:         models.ChargePaid,
	})
	// Cancelled lines never enter a claim.
	fx.store.addLine(models.EncounterCharge{
		EncounterID: fx.encounter.ID,
		PatientID:   fx.patient.ID,
		ItemName:    "Cancelled Scan",
		TotalAmount: 500,
		HMOPortion:  500,
		Status:      models.ChargeCancelled,
	})

	claim, err := fx.service.Generate(ctx, fx.encounter.ID)
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("CLM-%d-0001", year), claim.ClaimNumber)
	assert.Equal(t, fx.patient.ID, claim.PatientID)
	assert.Equal(t, fx.hmo.ID, claim.HMOID)
	assert.Equal(t, models.ClaimPending, claim.Status)
	assert.Equal(t, 84.0, claim.TotalClaimAmount)
	require.Len(t, claim.Items, 2)
	byName := make(map[string]models.ClaimItem, len(claim.Items))
	for _, item := range claim.Items {
		byName[item.Description] = item
	}
	assert.Equal(t, 30.0, byName["Consultation"].HMOPortion)
	assert.Equal(t, 54.0, byName["Antimalarial"].HMOPortion)
	assert.Equal(t, 6.0, byName["Antimalarial"].PatientPortion)
}

func TestGenerateClaimSequenceAdvances(t *testing.T) {
	fx := newClaimFixture(t, models.TierNHIA)
	ctx := context.Background()

	first, err := fx.service.Generate(ctx, fx.encounter.ID)
	require.NoError(t, err)

	second := fx.store.addEncounter(models.Encounter{PatientID: fx.patient.ID})
	claim, err := fx.service.Generate(ctx, second.ID)
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("CLM-%d-0001", year), first.ClaimNumber)
	assert.Equal(t, fmt.Sprintf("CLM-%d-0002", year), claim.ClaimNumber)
}

func TestGenerateClaimGates(t *testing.T) {
	ctx := context.Background()

	t.Run("standard tier is not claimable", func(t *testing.T) {
		fx := newClaimFixture(t, models.TierStandard)
		_, err := fx.service.Generate(ctx, fx.encounter.ID)
		assert.Equal(t, billing.KindInvalidState, billing.KindOf(err))
	})

	t.Run("insured patient without an hmo", func(t *testing.T) {
		fx := newClaimFixture(t, models.TierNHIA)
		patient, err := fx.store.GetPatient(ctx, fx.patient.ID)
		require.NoError(t, err)
		patient.HMOID = nil
		require.NoError(t, fx.store.SavePatient(ctx, patient))

		_, err = fx.service.Generate(ctx, fx.encounter.ID)
		assert.Equal(t, billing.KindInvalidState, billing.KindOf(err))
	})

	t.Run("unknown encounter", func(t *testing.T) {
		fx := newClaimFixture(t, models.TierNHIA)
		_, err := fx.service.Generate(ctx, "missing")
		assert.Equal(t, billing.KindNotFound, billing.KindOf(err))
	})
}

func TestGenerateClaimDuplicateConflicts(t *testing.T) {
	fx := newClaimFixture(t, models.TierNHIA)
	ctx := context.Background()

	_, err := fx.service.Generate(ctx, fx.encounter.ID)
	require.NoError(t, err)

	_, err = fx.service.Generate(ctx, fx.encounter.ID)
	assert.Equal(t, billing.KindConflict, billing.KindOf(err))
}

func TestGenerateClaimEmptyEncounter(t *testing.T) {
	fx := newClaimFixture(t, models.TierRetainership)
	ctx := context.Background()

	claim, err := fx.service.Generate(ctx, fx.encounter.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, claim.TotalClaimAmount)
	assert.Empty(t, claim.Items)
	assert.Equal(t, models.ClaimPending, claim.Status)
}

func TestBuildClaimItemsLegacyFallback(t *testing.T) {
	// Rows written before portions were recorded carry zeros in both fields;
	// only those are re-split with the current tier rules.
	charges := []models.EncounterCharge{
		{
			ItemName:     "Old Drug Line",
			ItemCategory: models.CategoryDrugs,
			Quantity:     1,
			UnitPrice:    100,
			TotalAmount:  100,
			Status:       models.ChargePaid,
		},
		{
			ItemName:       "Modern Lab Line",
			ItemCategory:   models.CategoryLab,
			Quantity:       1,
			UnitPrice:      40,
			TotalAmount:    40,
			PatientPortion: 0,
			HMOPortion:     40,
			Status:         models.ChargePaid,
		},
	}

	items, total := billing.BuildClaimItems(charges, models.TierNHIA)
	require.Len(t, items, 2)
	assert.Equal(t, 10.0, items[0].PatientPortion)
	assert.Equal(t, 90.0, items[0].HMOPortion)
	assert.Equal(t, 40.0, items[1].HMOPortion)
	assert.Equal(t, 130.0, total)
}

func TestSetStatusStampsDatesOnce(t *testing.T) {
	fx := newClaimFixture(t, models.TierNHIA)
	ctx := context.Background()

	claim, err := fx.service.Generate(ctx, fx.encounter.ID)
	require.NoError(t, err)

	claim, err = fx.service.SetStatus(ctx, claim.ID, billing.SetStatusInput{Status: models.ClaimSubmitted})
	require.NoError(t, err)
	require.NotNil(t, claim.SubmittedDate)
	firstStamp := *claim.SubmittedDate

	// Re-submitting does not move the stamp.
	claim, err = fx.service.SetStatus(ctx, claim.ID, billing.SetStatusInput{Status: models.ClaimSubmitted})
	require.NoError(t, err)
	assert.Equal(t, firstStamp, *claim.SubmittedDate)

	claim, err = fx.service.SetStatus(ctx, claim.ID, billing.SetStatusInput{Status: models.ClaimPaid})
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPaid, claim.Status)
	assert.NotNil(t, claim.PaidDate)
	assert.Nil(t, claim.ApprovedDate)
}

func TestSetStatusRejectionRequiresReason(t *testing.T) {
	fx := newClaimFixture(t, models.TierNHIA)
	ctx := context.Background()

	claim, err := fx.service.Generate(ctx, fx.encounter.ID)
	require.NoError(t, err)

	_, err = fx.service.SetStatus(ctx, claim.ID, billing.SetStatusInput{Status: models.ClaimRejected})
	assert.Equal(t, billing.KindValidation, billing.KindOf(err))

	rejected, err := fx.service.SetStatus(ctx, claim.ID, billing.SetStatusInput{
		Status:          models.ClaimRejected,
		RejectionReason: "member coverage lapsed",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ClaimRejected, rejected.Status)
	assert.Equal(t, "member coverage lapsed", rejected.RejectionReason)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	fx := newClaimFixture(t, models.TierNHIA)
	_, err := fx.service.SetStatus(context.Background(), "any", billing.SetStatusInput{Status: "archived"})
	assert.Equal(t, billing.KindValidation, billing.KindOf(err))
}

func TestFormatClaimNumber(t *testing.T) {
	assert.Equal(t, "CLM-2026-0042", billing.FormatClaimNumber(2026, 42))
	assert.Equal(t, "CLM-2026-12345", billing.FormatClaimNumber(2026, 12345))
}
