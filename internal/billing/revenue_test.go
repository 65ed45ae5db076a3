package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/models"
)

func paidCharge(encounterID string, method models.PaymentMethod, createdAt time.Time, line models.EncounterCharge) billing.PaidCharge {
	line.EncounterID = encounterID
	line.Status = models.ChargePaid
	line.CreatedAt = createdAt
	return billing.PaidCharge{
		EncounterCharge: line,
		Method:          method,
		PaidAt:          createdAt,
	}
}

func paidClaim(encounterID string, paidAt time.Time) *models.Claim {
	return &models.Claim{
		EncounterID: encounterID,
		Status:      models.ClaimPaid,
		PaidDate:    &paidAt,
	}
}

func TestRecognizedPortions(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	line := models.EncounterCharge{
		TotalAmount:    100,
		PatientPortion: 10,
		HMOPortion:     90,
	}

	tests := []struct {
		name        string
		method      models.PaymentMethod
		claim       *models.Claim
		chargeAt    time.Time
		wantPatient float64
		wantHMO     float64
	}{
		{
			name:        "cash settles the full amount immediately",
			method:      models.MethodCash,
			chargeAt:    base,
			wantPatient: 100,
			wantHMO:     0,
		},
		{
			name:        "insurance with a paid covering claim",
			method:      models.MethodInsurance,
			claim:       paidClaim("enc-1", base.Add(24*time.Hour)),
			chargeAt:    base,
			wantPatient: 10,
			wantHMO:     90,
		},
		{
			name:        "insurance with no claim yet",
			method:      models.MethodInsurance,
			chargeAt:    base,
			wantPatient: 10,
			wantHMO:     0,
		},
		{
			name:   "insurance with an unpaid claim",
			method: models.MethodInsurance,
			claim: &models.Claim{
				EncounterID: "enc-1",
				Status:      models.ClaimSubmitted,
			},
			chargeAt:    base,
			wantPatient: 10,
			wantHMO:     0,
		},
		{
			name:        "charge added after the claim was paid waits for the next cycle",
			method:      models.MethodInsurance,
			claim:       paidClaim("enc-1", base),
			chargeAt:    base.Add(48 * time.Hour),
			wantPatient: 10,
			wantHMO:     0,
		},
		{
			name:        "retainership is insurer settled too",
			method:      models.MethodRetainership,
			claim:       paidClaim("enc-1", base.Add(time.Hour)),
			chargeAt:    base,
			wantPatient: 10,
			wantHMO:     90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := paidCharge("enc-1", tt.method, tt.chargeAt, line)
			patient, hmo := billing.RecognizedPortions(c, tt.claim)
			assert.Equal(t, tt.wantPatient, patient)
			assert.Equal(t, tt.wantHMO, hmo)
		})
	}
}

func TestBuildRevenueReport(t *testing.T) {
	now := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)

	charges := []billing.PaidCharge{
		paidCharge("enc-cash", models.MethodCash, now, models.EncounterCharge{
			ItemName:       "Consultation",
			ItemCategory:   models.CategoryConsultation,
			Quantity:       1,
			TotalAmount:    100,
			PatientPortion: 100,
		}),
		paidCharge("enc-ins", models.MethodInsurance, now, models.EncounterCharge{
			ItemName:       "Antimalarial",
			ItemCategory:   models.CategoryDrugs,
			Quantity:       3,
			TotalAmount:    60,
			PatientPortion: 6,
			HMOPortion:     54,
		}),
		paidCharge("enc-wait", models.MethodInsurance, now, models.EncounterCharge{
			ItemName:       "Chest X-Ray",
			ItemCategory:   models.CategoryRadiology,
			Quantity:       1,
			TotalAmount:    80,
			HMOPortion:     80,
		}),
	}
	claims := map[string]*models.Claim{
		"enc-ins": paidClaim("enc-ins", now.Add(time.Hour)),
		// enc-wait has no claim yet; its HMO portion stays pending.
	}

	report := billing.BuildRevenueReport(charges, claims, billing.ReportFilter{})

	assert.Equal(t, 240.0, report.GrossBilled)
	assert.Equal(t, 160.0, report.RealizedRevenue)
	assert.Equal(t, 106.0, report.PatientRevenue)
	assert.Equal(t, 54.0, report.HMORevenue)
	assert.Equal(t, 80.0, report.PendingHMO)

	// Drugs roll up under pharmacy.
	require.Len(t, report.ByDepartment, 3)
	depts := make(map[string]billing.DepartmentRevenue)
	for _, d := range report.ByDepartment {
		depts[d.Department] = d
	}
	assert.Equal(t, 60.0, depts["pharmacy"].Gross)
	assert.Equal(t, 60.0, depts["pharmacy"].Realized)
	assert.Equal(t, 100.0, depts["consultation"].Realized)
	assert.Equal(t, 0.0, depts["radiology"].Realized)

	require.Len(t, report.ByService, 3)
	assert.Equal(t, "Antimalarial", report.ByService[0].Name)
	assert.Equal(t, 3, report.ByService[0].Quantity)
}

func TestBuildRevenueReportDepartmentFilter(t *testing.T) {
	now := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)
	charges := []billing.PaidCharge{
		paidCharge("enc-1", models.MethodCash, now, models.EncounterCharge{
			ItemName:       "Consultation",
			ItemCategory:   models.CategoryConsultation,
			Quantity:       1,
			TotalAmount:    100,
			PatientPortion: 100,
		}),
		paidCharge("enc-1", models.MethodCash, now, models.EncounterCharge{
			ItemName:       "Paracetamol",
			ItemCategory:   models.CategoryDrugs,
			Quantity:       2,
			TotalAmount:    10,
			PatientPortion: 10,
		}),
	}

	report := billing.BuildRevenueReport(charges, nil, billing.ReportFilter{Department: "pharmacy"})
	assert.Equal(t, 10.0, report.GrossBilled)
	require.Len(t, report.ByDepartment, 1)
	assert.Equal(t, "pharmacy", report.ByDepartment[0].Department)
}

func TestBuildDashboardStats(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	today := now.Add(-2 * time.Hour)
	threeDaysAgo := now.AddDate(0, 0, -3)
	tenDaysAgo := now.AddDate(0, 0, -10)
	lastYear := now.AddDate(-1, 0, 0)

	cashLine := models.EncounterCharge{
		ItemName:       "Consultation",
		ItemCategory:   models.CategoryConsultation,
		Quantity:       1,
		TotalAmount:    100,
		PatientPortion: 100,
	}
	paid := []billing.PaidCharge{
		paidCharge("enc-a", models.MethodCash, today, cashLine),
		paidCharge("enc-b", models.MethodCash, threeDaysAgo, cashLine),
		paidCharge("enc-c", models.MethodCash, tenDaysAgo, cashLine),
		paidCharge("enc-d", models.MethodCash, lastYear, cashLine),
		paidCharge("enc-ins", models.MethodInsurance, today, models.EncounterCharge{
			ItemName:       "Lipid Panel",
			ItemCategory:   models.CategoryLab,
			Quantity:       1,
			TotalAmount:    50,
			HMOPortion:     50,
		}),
	}
	pending := []models.EncounterCharge{
		{Status: models.ChargePending, TotalAmount: 30, PatientPortion: 3, HMOPortion: 27},
	}
	allClaims := []models.Claim{
		{Status: models.ClaimPending},
		{Status: models.ClaimSubmitted},
		{Status: models.ClaimPaid},
		{Status: models.ClaimRejected},
	}

	stats := billing.BuildDashboardStats(paid, pending, nil, allClaims, now)

	assert.Equal(t, 2, stats.Today.Charges)
	assert.Equal(t, 150.0, stats.Today.Collected)
	// The insurance line has no paid claim, so only its patient portion (zero)
	// is realized.
	assert.Equal(t, 100.0, stats.Today.Realized)

	assert.Equal(t, 3, stats.ThisWeek.Charges)
	assert.Equal(t, 4, stats.ThisMonth.Charges)
	assert.Equal(t, 5, stats.AllTime.Charges)
	assert.Equal(t, 450.0, stats.AllTime.Collected)
	assert.Equal(t, 400.0, stats.AllTime.Realized)

	assert.Equal(t, 3.0, stats.PendingPatient)
	// 27 pending-line HMO share plus the unrecognized 50 on the settled line.
	assert.Equal(t, 77.0, stats.PendingHMO)
	assert.Equal(t, 2, stats.OpenClaims)
}

func TestBuildPendingHMOSummary(t *testing.T) {
	claims := []models.Claim{
		{HMOID: "hmo-a", HMO: models.HMO{Name: "Alpha Care"}, Status: models.ClaimPending, TotalClaimAmount: 100},
		{HMOID: "hmo-a", HMO: models.HMO{Name: "Alpha Care"}, Status: models.ClaimSubmitted, TotalClaimAmount: 250},
		{HMOID: "hmo-b", HMO: models.HMO{Name: "Beta Shield"}, Status: models.ClaimApproved, TotalClaimAmount: 75},
		{HMOID: "hmo-a", HMO: models.HMO{Name: "Alpha Care"}, Status: models.ClaimPaid, TotalClaimAmount: 999},
		{HMOID: "hmo-b", HMO: models.HMO{Name: "Beta Shield"}, Status: models.ClaimRejected, TotalClaimAmount: 40},
	}

	summary := billing.BuildPendingHMOSummary(claims)
	require.Len(t, summary, 2)

	assert.Equal(t, "Alpha Care", summary[0].HMOName)
	assert.Equal(t, 2, summary[0].Claims)
	assert.Equal(t, 350.0, summary[0].Amount)

	assert.Equal(t, "Beta Shield", summary[1].HMOName)
	assert.Equal(t, 1, summary[1].Claims)
	assert.Equal(t, 75.0, summary[1].Amount)
}

func TestPendingSplit(t *testing.T) {
	pending := []models.EncounterCharge{
		{Status: models.ChargePending, TotalAmount: 60, PatientPortion: 6, HMOPortion: 54},
		{Status: models.ChargePending, TotalAmount: 100, PatientPortion: 100},
		// Legacy row with no recorded split counts entirely as patient-owed.
		{Status: models.ChargePending, TotalAmount: 40},
		// Non-pending rows are ignored.
		{Status: models.ChargePaid, TotalAmount: 500, HMOPortion: 500},
	}

	patientOwed, hmoOwed := billing.PendingSplit(pending)
	assert.Equal(t, 146.0, patientOwed)
	assert.Equal(t, 54.0, hmoOwed)
}

func TestDepartmentFor(t *testing.T) {
	tests := []struct {
		category models.ChargeCategory
		want     string
	}{
		{models.CategoryConsultation, "consultation"},
		{models.CategoryLab, "laboratory"},
		{models.CategoryRadiology, "radiology"},
		{models.CategoryDrugs, "pharmacy"},
		{models.CategoryNursing, "nursing"},
		{models.CategoryOther, "general"},
		{models.ChargeCategory("unknown"), "general"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, billing.DepartmentFor(tt.category))
	}
}
