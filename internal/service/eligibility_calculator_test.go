package service

import (
	"math"
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestCalculateEligibility_StrongSalariedApplicant(t *testing.T) {
	profile := ApplicantProfile{
		MonthlyIncome:            50000,
		EmploymentType:           EmploymentSalaried,
		EmploymentDurationMonths: 30,
		CreditScore:              intPtr(780),
		LoanAmountRequested:      500000,
	}

	result := CalculateEligibility(profile)

	// 50 base + 20 salaried + 15 duration + 15 credit = 100
	if result.EligibilityScore != 100 {
		t.Errorf("EligibilityScore = %d, want 100", result.EligibilityScore)
	}
	if result.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %q, want %q", result.RiskLevel, RiskLow)
	}
	// 50000 * 0.6 * 60 = 1,800,000 capped at the requested 500,000
	if result.RecommendedAmount != 500000 {
		t.Errorf("RecommendedAmount = %v, want 500000", result.RecommendedAmount)
	}
}

func TestCalculateEligibility_IndebtedSelfEmployedApplicant(t *testing.T) {
	profile := ApplicantProfile{
		MonthlyIncome:            20000,
		EmploymentType:           EmploymentSelfEmployed,
		EmploymentDurationMonths: 6,
		ExistingLoans:            []ExistingLoan{{Type: "personal", Amount: 100000, MonthlyEmi: 5000}},
		CreditScore:              intPtr(580),
		LoanAmountRequested:      200000,
	}

	result := CalculateEligibility(profile)

	// 50 base + 10 self_employed + 0 duration - 20 credit = 40
	if result.EligibilityScore != 40 {
		t.Errorf("EligibilityScore = %d, want 40", result.EligibilityScore)
	}
	if result.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %q, want %q", result.RiskLevel, RiskHigh)
	}
	// available 15000 * 0.6 * 60 = 540,000 capped at 200,000
	if result.RecommendedAmount != 200000 {
		t.Errorf("RecommendedAmount = %v, want 200000", result.RecommendedAmount)
	}
}

func TestCalculateEligibility_ScoreAdjustments(t *testing.T) {
	base := ApplicantProfile{
		MonthlyIncome:       30000,
		LoanAmountRequested: 100000,
	}

	tests := []struct {
		name   string
		mutate func(*ApplicantProfile)
		want   int
	}{
		{"base only", func(p *ApplicantProfile) {}, 50},
		{"unknown employment is neutral", func(p *ApplicantProfile) { p.EmploymentType = "gig_worker" }, 50},
		{"salaried", func(p *ApplicantProfile) { p.EmploymentType = EmploymentSalaried }, 70},
		{"self employed", func(p *ApplicantProfile) { p.EmploymentType = EmploymentSelfEmployed }, 60},
		{"12 months employment", func(p *ApplicantProfile) { p.EmploymentDurationMonths = 12 }, 60},
		{"24 months employment", func(p *ApplicantProfile) { p.EmploymentDurationMonths = 24 }, 65},
		{"credit 750", func(p *ApplicantProfile) { p.CreditScore = intPtr(750) }, 65},
		{"credit 650", func(p *ApplicantProfile) { p.CreditScore = intPtr(650) }, 60},
		{"credit 620 is neutral", func(p *ApplicantProfile) { p.CreditScore = intPtr(620) }, 50},
		{"credit 580 penalised", func(p *ApplicantProfile) { p.CreditScore = intPtr(580) }, 30},
		{"absent credit score is neutral", func(p *ApplicantProfile) { p.CreditScore = nil }, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := base
			tt.mutate(&profile)
			got := CalculateEligibility(profile).EligibilityScore
			if got != tt.want {
				t.Errorf("EligibilityScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateEligibility_CreditScoreMonotonicAcross650(t *testing.T) {
	profile := ApplicantProfile{
		MonthlyIncome:       30000,
		EmploymentType:      EmploymentSalaried,
		LoanAmountRequested: 100000,
	}

	profile.CreditScore = intPtr(640)
	below := CalculateEligibility(profile).EligibilityScore
	profile.CreditScore = intPtr(660)
	above := CalculateEligibility(profile).EligibilityScore

	if above < below {
		t.Errorf("score decreased across the 650 threshold: 640 -> %d, 660 -> %d", below, above)
	}
	if above-below != GoodCreditBonus {
		t.Errorf("crossing 650 added %d, want %d", above-below, GoodCreditBonus)
	}
}

func TestCalculateEligibility_NegativeAvailableIncomeClampsToZero(t *testing.T) {
	profile := ApplicantProfile{
		MonthlyIncome:       10000,
		ExistingLoans:       []ExistingLoan{{MonthlyEmi: 15000}},
		LoanAmountRequested: 100000,
	}

	result := CalculateEligibility(profile)
	if result.RecommendedAmount != 0 {
		t.Errorf("RecommendedAmount = %v, want 0 when debt exceeds income", result.RecommendedAmount)
	}
}

func TestCalculateEligibility_ScoreBounds(t *testing.T) {
	// worst case: penalised credit only -> 50 - 20 = 30, never below 0
	worst := ApplicantProfile{
		MonthlyIncome:       1000,
		CreditScore:         intPtr(300),
		LoanAmountRequested: 1000,
	}
	// best case already clamps at 100
	best := ApplicantProfile{
		MonthlyIncome:            100000,
		EmploymentType:           EmploymentSalaried,
		EmploymentDurationMonths: 120,
		CreditScore:              intPtr(900),
		LoanAmountRequested:      100000,
	}

	for _, profile := range []ApplicantProfile{worst, best} {
		result := CalculateEligibility(profile)
		if result.EligibilityScore < 0 || result.EligibilityScore > 100 {
			t.Errorf("EligibilityScore = %d, out of [0,100]", result.EligibilityScore)
		}
		if result.RecommendedAmount < 0 || result.RecommendedAmount > profile.LoanAmountRequested {
			t.Errorf("RecommendedAmount = %v, out of [0,%v]", result.RecommendedAmount, profile.LoanAmountRequested)
		}
	}
}

func TestCalculateEligibility_Deterministic(t *testing.T) {
	profile := ApplicantProfile{
		MonthlyIncome:            42000,
		EmploymentType:           EmploymentSelfEmployed,
		EmploymentDurationMonths: 18,
		ExistingLoans:            []ExistingLoan{{Type: "gold", Amount: 50000, MonthlyEmi: 2500}},
		CreditScore:              intPtr(700),
		LoanAmountRequested:      300000,
	}

	first := CalculateEligibility(profile)
	second := CalculateEligibility(profile)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("calculator not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDebtToIncomeRatio(t *testing.T) {
	tests := []struct {
		name    string
		profile ApplicantProfile
		want    float64
	}{
		{
			"no existing loans",
			ApplicantProfile{MonthlyIncome: 50000},
			0,
		},
		{
			"quarter of income",
			ApplicantProfile{
				MonthlyIncome: 20000,
				ExistingLoans: []ExistingLoan{{MonthlyEmi: 3000}, {MonthlyEmi: 2000}},
			},
			25,
		},
		{
			"non-positive income yields zero",
			ApplicantProfile{MonthlyIncome: 0, ExistingLoans: []ExistingLoan{{MonthlyEmi: 1000}}},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DebtToIncomeRatio(tt.profile)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DebtToIncomeRatio = %v, want %v", got, tt.want)
			}
		})
	}
}
