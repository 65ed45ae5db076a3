package billing

import (
	"context"
	"sort"
	"time"

	"hospital-billing-server/internal/models"
)

// ReportService derives revenue figures from the ledger, receipts and claims.
// Everything here is read-only and safe to run repeatedly.
//
// Revenue recognition is cash-basis for insurance: a charge settled by an
// insurer-backed method contributes its patient portion immediately, but its
// HMO portion only once the encounter's claim is paid — and only if the
// charge predates the claim payment. Charges added after a claim was paid
// wait for the next claim cycle.
type ReportService struct {
	store Store
}

// NewReportService creates a new ReportService.
func NewReportService(store Store) *ReportService {
	return &ReportService{store: store}
}

// ReportFilter narrows a revenue report.
type ReportFilter struct {
	From       time.Time
	To         time.Time
	Department string
}

// DepartmentRevenue is one row of the by-department breakdown.
type DepartmentRevenue struct {
	Department string  `json:"department"`
	Charges    int     `json:"charges"`
	Gross      float64 `json:"gross"`
	Realized   float64 `json:"realized"`
}

// ServiceRevenue is one row of the by-service breakdown.
type ServiceRevenue struct {
	Name     string                `json:"name"`
	Category models.ChargeCategory `json:"category"`
	Quantity int                   `json:"quantity"`
	Gross    float64               `json:"gross"`
	Realized float64               `json:"realized"`
}

// RevenueReport is the aggregate for a date range.
type RevenueReport struct {
	From            string              `json:"from,omitempty"`
	To              string              `json:"to,omitempty"`
	GrossBilled     float64             `json:"grossBilled"`
	RealizedRevenue float64             `json:"realizedRevenue"`
	PatientRevenue  float64             `json:"patientRevenue"`
	HMORevenue      float64             `json:"hmoRevenue"`
	PendingHMO      float64             `json:"pendingHmo"`
	ByDepartment    []DepartmentRevenue `json:"byDepartment"`
	ByService       []ServiceRevenue    `json:"byService"`
}

// WindowStats is the dashboard aggregate for one time window.
type WindowStats struct {
	Charges   int     `json:"charges"`
	Collected float64 `json:"collected"`
	Realized  float64 `json:"realized"`
}

// DashboardStats covers the fixed dashboard windows plus outstanding totals.
type DashboardStats struct {
	Today          WindowStats         `json:"today"`
	ThisWeek       WindowStats         `json:"thisWeek"`
	ThisMonth      WindowStats         `json:"thisMonth"`
	AllTime        WindowStats         `json:"allTime"`
	PendingPatient float64             `json:"pendingPatient"`
	PendingHMO     float64             `json:"pendingHmo"`
	OpenClaims     int                 `json:"openClaims"`
	ByDepartment   []DepartmentRevenue `json:"byDepartment"`
}

// HMOOutstanding is one row of the pending-HMO summary.
type HMOOutstanding struct {
	HMOID   string  `json:"hmoId"`
	HMOName string  `json:"hmoName"`
	Claims  int     `json:"claims"`
	Amount  float64 `json:"amount"`
}

// RevenueReport aggregates paid charges in [filter.From, filter.To).
func (s *ReportService) RevenueReport(ctx context.Context, filter ReportFilter) (*RevenueReport, error) {
	charges, err := s.store.ListPaidCharges(ctx, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	claims, err := s.claimsFor(ctx, charges)
	if err != nil {
		return nil, err
	}
	return BuildRevenueReport(charges, claims, filter), nil
}

// DashboardStats computes the fixed-window dashboard figures.
func (s *ReportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	paid, err := s.store.ListPaidCharges(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	claims, err := s.claimsFor(ctx, paid)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.ListPendingCharges(ctx)
	if err != nil {
		return nil, err
	}
	allClaims, err := s.store.ListClaims(ctx, ClaimFilter{})
	if err != nil {
		return nil, err
	}
	return BuildDashboardStats(paid, pending, claims, allClaims, time.Now()), nil
}

// PendingHMOSummary groups unpaid claims by HMO.
func (s *ReportService) PendingHMOSummary(ctx context.Context, filter ClaimFilter) ([]HMOOutstanding, error) {
	claims, err := s.store.ListClaims(ctx, filter)
	if err != nil {
		return nil, err
	}
	return BuildPendingHMOSummary(claims), nil
}

func (s *ReportService) claimsFor(ctx context.Context, charges []PaidCharge) (map[string]*models.Claim, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range charges {
		if !seen[c.EncounterID] {
			seen[c.EncounterID] = true
			ids = append(ids, c.EncounterID)
		}
	}
	if len(ids) == 0 {
		return map[string]*models.Claim{}, nil
	}
	return s.store.ClaimsByEncounter(ctx, ids)
}

// RecognizedPortions returns the realized patient-side and HMO-side revenue
// for one settled charge under cash-basis rules.
func RecognizedPortions(c PaidCharge, claim *models.Claim) (patient, hmo float64) {
	if !c.Method.InsurerSettled() {
		return c.TotalAmount, 0
	}
	if claimCovers(claim, c.EncounterCharge.CreatedAt) {
		return c.PatientPortion, c.HMOPortion
	}
	return c.PatientPortion, 0
}

// claimCovers reports whether a paid claim reimburses a charge created at the
// given time. A charge created after the claim was paid is not covered.
func claimCovers(claim *models.Claim, chargeCreated time.Time) bool {
	return claim != nil &&
		claim.Status == models.ClaimPaid &&
		claim.PaidDate != nil &&
		!chargeCreated.After(*claim.PaidDate)
}

// BuildRevenueReport is the pure aggregation behind RevenueReport.
func BuildRevenueReport(charges []PaidCharge, claims map[string]*models.Claim, filter ReportFilter) *RevenueReport {
	report := &RevenueReport{
		ByDepartment: []DepartmentRevenue{},
		ByService:    []ServiceRevenue{},
	}
	if !filter.From.IsZero() {
		report.From = filter.From.Format(time.DateOnly)
	}
	if !filter.To.IsZero() {
		report.To = filter.To.Format(time.DateOnly)
	}

	departments := make(map[string]*DepartmentRevenue)
	services := make(map[string]*ServiceRevenue)

	for _, c := range charges {
		dept := DepartmentFor(c.ItemCategory)
		if filter.Department != "" && dept != filter.Department {
			continue
		}

		patient, hmo := RecognizedPortions(c, claims[c.EncounterID])
		realized := patient + hmo

		report.GrossBilled = round2(report.GrossBilled + c.TotalAmount)
		report.RealizedRevenue = round2(report.RealizedRevenue + realized)
		report.PatientRevenue = round2(report.PatientRevenue + patient)
		report.HMORevenue = round2(report.HMORevenue + hmo)
		if c.Method.InsurerSettled() && hmo == 0 {
			report.PendingHMO = round2(report.PendingHMO + c.HMOPortion)
		}

		d, ok := departments[dept]
		if !ok {
			d = &DepartmentRevenue{Department: dept}
			departments[dept] = d
		}
		d.Charges++
		d.Gross = round2(d.Gross + c.TotalAmount)
		d.Realized = round2(d.Realized + realized)

		sv, ok := services[c.ItemName]
		if !ok {
			sv = &ServiceRevenue{Name: c.ItemName, Category: c.ItemCategory}
			services[c.ItemName] = sv
		}
		sv.Quantity += c.Quantity
		sv.Gross = round2(sv.Gross + c.TotalAmount)
		sv.Realized = round2(sv.Realized + realized)
	}

	for _, d := range departments {
		report.ByDepartment = append(report.ByDepartment, *d)
	}
	sort.Slice(report.ByDepartment, func(i, j int) bool {
		return report.ByDepartment[i].Department < report.ByDepartment[j].Department
	})
	for _, sv := range services {
		report.ByService = append(report.ByService, *sv)
	}
	sort.Slice(report.ByService, func(i, j int) bool {
		return report.ByService[i].Name < report.ByService[j].Name
	})

	return report
}

// BuildDashboardStats is the pure aggregation behind DashboardStats.
func BuildDashboardStats(paid []PaidCharge, pending []models.EncounterCharge, claims map[string]*models.Claim, allClaims []models.Claim, now time.Time) *DashboardStats {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -6)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &DashboardStats{
		Today:        windowStats(paid, claims, startOfDay),
		ThisWeek:     windowStats(paid, claims, startOfWeek),
		ThisMonth:    windowStats(paid, claims, startOfMonth),
		AllTime:      windowStats(paid, claims, time.Time{}),
		ByDepartment: []DepartmentRevenue{},
	}

	patientOwed, hmoOwed := PendingSplit(pending)
	stats.PendingPatient = patientOwed
	// Outstanding insurer liability: unrecognized HMO portions of settled
	// charges plus insurer shares of still-pending lines.
	stats.PendingHMO = hmoOwed
	for _, c := range paid {
		if !c.Method.InsurerSettled() {
			continue
		}
		if _, hmo := RecognizedPortions(c, claims[c.EncounterID]); hmo == 0 {
			stats.PendingHMO = round2(stats.PendingHMO + c.HMOPortion)
		}
	}

	for _, cl := range allClaims {
		switch cl.Status {
		case models.ClaimPending, models.ClaimSubmitted, models.ClaimApproved:
			stats.OpenClaims++
		}
	}

	departments := make(map[string]*DepartmentRevenue)
	for _, c := range paid {
		patient, hmo := RecognizedPortions(c, claims[c.EncounterID])
		dept := DepartmentFor(c.ItemCategory)
		d, ok := departments[dept]
		if !ok {
			d = &DepartmentRevenue{Department: dept}
			departments[dept] = d
		}
		d.Charges++
		d.Gross = round2(d.Gross + c.TotalAmount)
		d.Realized = round2(d.Realized + patient + hmo)
	}
	for _, d := range departments {
		stats.ByDepartment = append(stats.ByDepartment, *d)
	}
	sort.Slice(stats.ByDepartment, func(i, j int) bool {
		return stats.ByDepartment[i].Department < stats.ByDepartment[j].Department
	})

	return stats
}

func windowStats(paid []PaidCharge, claims map[string]*models.Claim, since time.Time) WindowStats {
	var w WindowStats
	for _, c := range paid {
		if !since.IsZero() && c.PaidAt.Before(since) {
			continue
		}
		patient, hmo := RecognizedPortions(c, claims[c.EncounterID])
		w.Charges++
		w.Collected = round2(w.Collected + c.TotalAmount)
		w.Realized = round2(w.Realized + patient + hmo)
	}
	return w
}

// BuildPendingHMOSummary groups unpaid, non-rejected claims by HMO.
func BuildPendingHMOSummary(claims []models.Claim) []HMOOutstanding {
	byHMO := make(map[string]*HMOOutstanding)
	for _, cl := range claims {
		switch cl.Status {
		case models.ClaimPaid, models.ClaimRejected:
			continue
		}
		row, ok := byHMO[cl.HMOID]
		if !ok {
			row = &HMOOutstanding{HMOID: cl.HMOID, HMOName: cl.HMO.Name}
			byHMO[cl.HMOID] = row
		}
		row.Claims++
		row.Amount = round2(row.Amount + cl.TotalClaimAmount)
	}

	out := make([]HMOOutstanding, 0, len(byHMO))
	for _, row := range byHMO {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HMOName < out[j].HMOName })
	return out
}

// PendingSplit divides the outstanding total of pending ledger lines into
// patient-owed and insurer-owed using the stored portions. Legacy rows with
// no recorded split are counted entirely as patient-owed.
func PendingSplit(pending []models.EncounterCharge) (patientOwed, hmoOwed float64) {
	for _, c := range pending {
		if c.Status != models.ChargePending {
			continue
		}
		if c.PatientPortion == 0 && c.HMOPortion == 0 && c.TotalAmount != 0 {
			patientOwed = round2(patientOwed + c.TotalAmount)
			continue
		}
		patientOwed = round2(patientOwed + c.PatientPortion)
		hmoOwed = round2(hmoOwed + c.HMOPortion)
	}
	return patientOwed, hmoOwed
}

// DepartmentFor maps a charge category to the hospital department that earns
// its revenue. Drugs are normalized to pharmacy.
func DepartmentFor(category models.ChargeCategory) string {
	switch category {
	case models.CategoryConsultation:
		return "consultation"
	case models.CategoryLab:
		return "laboratory"
	case models.CategoryRadiology:
		return "radiology"
	case models.CategoryDrugs:
		return "pharmacy"
	case models.CategoryNursing:
		return "nursing"
	}
	return "general"
}
