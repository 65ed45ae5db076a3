package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/models"
)

func TestResolvePrice(t *testing.T) {
	tests := []struct {
		name     string
		charge   models.Charge
		tier     models.ProviderTier
		quantity int
		want     billing.PricedAmount
	}{
		{
			name: "standard tier falls back to base price when fee is zero",
			charge: models.Charge{
				Category:    models.CategoryConsultation,
				StandardFee: 0,
				BasePrice:   50,
			},
			tier:     models.TierStandard,
			quantity: 2,
			want: billing.PricedAmount{
				UnitPrice:      50,
				TotalAmount:    100,
				PatientPortion: 100,
				HMOPortion:     0,
			},
		},
		{
			name: "nhia drugs carry a ten percent patient co-pay",
			charge: models.Charge{
				Category:  models.CategoryDrugs,
				NHIAFee:   20,
				BasePrice: 35,
			},
			tier:     models.TierNHIA,
			quantity: 3,
			want: billing.PricedAmount{
				UnitPrice:      20,
				TotalAmount:    60,
				PatientPortion: 6,
				HMOPortion:     54,
			},
		},
		{
			name: "nhia non-drug services are fully insurer covered",
			charge: models.Charge{
				Category:  models.CategoryLab,
				NHIAFee:   120,
				BasePrice: 150,
			},
			tier:     models.TierNHIA,
			quantity: 1,
			want: billing.PricedAmount{
				UnitPrice:      120,
				TotalAmount:    120,
				PatientPortion: 0,
				HMOPortion:     120,
			},
		},
		{
			name: "retainership pays nothing out of pocket",
			charge: models.Charge{
				Category:        models.CategoryConsultation,
				RetainershipFee: 40,
				BasePrice:       50,
			},
			tier:     models.TierRetainership,
			quantity: 1,
			want: billing.PricedAmount{
				UnitPrice:      40,
				TotalAmount:    40,
				PatientPortion: 0,
				HMOPortion:     40,
			},
		},
		{
			name: "kschma drugs split like nhia",
			charge: models.Charge{
				Category:  models.CategoryDrugs,
				KSCHMAFee: 15.50,
				BasePrice: 25,
			},
			tier:     models.TierKSCHMA,
			quantity: 2,
			want: billing.PricedAmount{
				UnitPrice:      15.50,
				TotalAmount:    31,
				PatientPortion: 3.10,
				HMOPortion:     27.90,
			},
		},
		{
			name: "standard tier uses the standard fee when set",
			charge: models.Charge{
				Category:    models.CategoryRadiology,
				StandardFee: 200,
				BasePrice:   180,
			},
			tier:     models.TierStandard,
			quantity: 1,
			want: billing.PricedAmount{
				UnitPrice:      200,
				TotalAmount:    200,
				PatientPortion: 200,
				HMOPortion:     0,
			},
		},
		{
			name: "insured tier falls back to base price when its fee is zero",
			charge: models.Charge{
				Category:  models.CategoryNursing,
				NHIAFee:   0,
				BasePrice: 80,
			},
			tier:     models.TierNHIA,
			quantity: 1,
			want: billing.PricedAmount{
				UnitPrice:      80,
				TotalAmount:    80,
				PatientPortion: 0,
				HMOPortion:     80,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.ResolvePrice(&tt.charge, tt.tier, tt.quantity)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePricePortionsSumToTotal(t *testing.T) {
	charge := models.Charge{
		Category:        models.CategoryDrugs,
		StandardFee:     33.33,
		RetainershipFee: 27.77,
		NHIAFee:         19.99,
		KSCHMAFee:       21.01,
		BasePrice:       30,
	}
	tiers := []models.ProviderTier{
		models.TierStandard,
		models.TierRetainership,
		models.TierNHIA,
		models.TierKSCHMA,
	}

	for _, tier := range tiers {
		for qty := 1; qty <= 7; qty++ {
			got := billing.ResolvePrice(&charge, tier, qty)
			assert.InDelta(t, got.TotalAmount, got.PatientPortion+got.HMOPortion, 0.001,
				"tier %s qty %d", tier, qty)
		}
	}
}

func TestSplitAmountAdhoc(t *testing.T) {
	got := billing.SplitAmount(75, 2, models.TierNHIA, models.CategoryDrugs)
	assert.Equal(t, 150.0, got.TotalAmount)
	assert.Equal(t, 15.0, got.PatientPortion)
	assert.Equal(t, 135.0, got.HMOPortion)

	got = billing.SplitAmount(75, 2, models.TierStandard, models.CategoryOther)
	assert.Equal(t, 150.0, got.PatientPortion)
	assert.Equal(t, 0.0, got.HMOPortion)
}
