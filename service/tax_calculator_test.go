package service

import (
	"math"
	"testing"

	"tax-agent/domain"
)

func einzel(income float64) domain.TaxCalculationInput {
	return domain.TaxCalculationInput{TaxableIncome: income, AssessmentType: domain.AssessmentEinzel}
}

func splitting(income float64) domain.TaxCalculationInput {
	return domain.TaxCalculationInput{TaxableIncome: income, AssessmentType: domain.AssessmentSplitting}
}

func TestBracket_ZeroUpToGrundfreibetrag(t *testing.T) {
	cfg := Tariff2025()

	for _, zvE := range []float64{-50000, -1, 0, 1, 5000, 12000, 12095.99, 12096} {
		if tax := Bracket(cfg, zvE); tax != 0 {
			t.Errorf("Bracket(%.2f) = %.0f, want 0", zvE, tax)
		}
	}
}

func TestBracket_Zones(t *testing.T) {
	cfg := Tariff2025()

	tests := []struct {
		name string
		zvE  float64
		want float64
	}{
		{"zone 2", 13000, 134},
		{"zone 2 upper limit", 17005, 909},
		{"zone 3 lower edge", 17006, 1025},
		{"zone 3", 50000, 10906},
		{"zone 3 upper limit", 66760, 17437},
		{"zone 4", 70688, 19086},
		{"zone 4 upper limit", 277825, 106084},
		{"zone 5", 300000, 116063},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bracket(cfg, tt.zvE); got != tt.want {
				t.Errorf("Bracket(%.0f) = %.0f, want %.0f", tt.zvE, got, tt.want)
			}
		})
	}
}

func TestBracket_Zone3MatchesDerivation(t *testing.T) {
	cfg := Tariff2025()

	z := (50000.0 - 17005) / 10000
	want := math.Floor((181.19*z+2397)*z + 1025.38)

	if got := Bracket(cfg, 50000); got != want {
		t.Errorf("Bracket(50000) = %.0f, want %.0f", got, want)
	}
}

// zone formulas without truncation, for boundary comparisons
func zone2(cfg domain.TaxYearConfig, zvE float64) float64 {
	y := (zvE - cfg.Grundfreibetrag) / 10000
	return (cfg.Zone2.A*y + cfg.Zone2.B) * y
}

func zone3(cfg domain.TaxYearConfig, zvE float64) float64 {
	z := (zvE - cfg.Zone2Limit) / 10000
	return (cfg.Zone3.A*z+cfg.Zone3.B)*z + cfg.Zone3.C
}

func linear(zone domain.LinearZone, zvE float64) float64 {
	return zone.Rate*zvE - zone.Deduction
}

func TestBracket_ContinuityAtZoneLimits(t *testing.T) {
	cfg := Tariff2025()

	if diff := math.Abs(zone3(cfg, cfg.Zone3Limit) - linear(cfg.Zone4, cfg.Zone3Limit)); diff > 1 {
		t.Errorf("zone 3/4 differ by %.2f at %.0f", diff, cfg.Zone3Limit)
	}
	if diff := math.Abs(linear(cfg.Zone4, cfg.Zone4Limit) - linear(cfg.Zone5, cfg.Zone4Limit)); diff > 1 {
		t.Errorf("zone 4/5 differ by %.2f at %.0f", diff, cfg.Zone4Limit)
	}

	// The 2025 allowance moves the start of zone 2 but not its coefficients, so
	// zone 2/3 continuity holds for the 2024 tariff.
	cfg2024 := Tariff2024()
	if diff := math.Abs(zone2(cfg2024, cfg2024.Zone2Limit) - zone3(cfg2024, cfg2024.Zone2Limit)); diff > 1 {
		t.Errorf("zone 2/3 differ by %.2f at %.0f", diff, cfg2024.Zone2Limit)
	}
	if Bracket(cfg2024, 17005) != Bracket(cfg2024, 17005.01) {
		t.Errorf("2024 tariff jumps at 17005: %.0f vs %.0f", Bracket(cfg2024, 17005), Bracket(cfg2024, 17005.01))
	}
}

func TestBracket_Monotonic(t *testing.T) {
	for _, cfg := range []domain.TaxYearConfig{Tariff2024(), Tariff2025()} {
		prev := Bracket(cfg, -1000)
		for zvE := -1000.0; zvE <= 700000; zvE += 13.7 {
			tax := Bracket(cfg, zvE)
			if tax < prev {
				t.Fatalf("%d: Bracket(%.2f) = %.0f < %.0f", cfg.Year, zvE, tax, prev)
			}
			prev = tax
		}
	}
}

func TestMarginalRate(t *testing.T) {
	cfg := Tariff2025()

	tests := []struct {
		zvE  float64
		want float64
	}{
		{0, 0},
		{12096, 0},
		{12096.0001, 0.14},
		{50000, (2*181.19*3.2995 + 2397) / 10000},
		{100000, 0.42},
		{300000, 0.45},
	}

	for _, tt := range tests {
		got := MarginalRate(cfg, tt.zvE)
		if math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("MarginalRate(%.4f) = %.6f, want %.6f", tt.zvE, got, tt.want)
		}
		if got < 0 || got > 0.45 {
			t.Errorf("MarginalRate(%.4f) = %.6f out of range", tt.zvE, got)
		}
	}
}

func TestCalculateTax_Scenarios(t *testing.T) {
	cfg := Tariff2025()

	tests := []struct {
		name  string
		input domain.TaxCalculationInput
		want  domain.TaxCalculationResult
	}{
		{
			name:  "A: basic allowance",
			input: einzel(12096),
			want: domain.TaxCalculationResult{
				TaxableIncome: 12096, NetIncome: 12096,
			},
		},
		{
			name:  "B: zone 3 single",
			input: einzel(50000),
			want: domain.TaxCalculationResult{
				TaxableIncome: 50000, IncomeTax: 10906, TotalTax: 10906,
				MarginalTaxRate: 35.9, EffectiveTaxRate: 21.8, NetIncome: 39094,
			},
		},
		{
			name: "C: splitting with church tax",
			input: domain.TaxCalculationInput{
				TaxableIncome: 100000, AssessmentType: domain.AssessmentSplitting, ChurchTax: true,
			},
			want: domain.TaxCalculationResult{
				TaxableIncome: 100000, IncomeTax: 21812, ChurchTax: 1963, TotalTax: 23775,
				MarginalTaxRate: 35.9, EffectiveTaxRate: 23.8, NetIncome: 76225,
			},
		},
		{
			name: "D: child allowance",
			input: domain.TaxCalculationInput{
				TaxableIncome: 80000, AssessmentType: domain.AssessmentEinzel, ChildrenCount: 2,
			},
			want: domain.TaxCalculationResult{
				TaxableIncome: 80000, IncomeTax: 19086, SolidaritySurcharge: 114, TotalTax: 19200,
				MarginalTaxRate: 42, EffectiveTaxRate: 24, NetIncome: 60800, ChildAllowanceUsed: true,
			},
		},
		{
			name:  "E: top rate",
			input: einzel(300000),
			want: domain.TaxCalculationResult{
				TaxableIncome: 300000, IncomeTax: 116063, SolidaritySurcharge: 6383, TotalTax: 122446,
				MarginalTaxRate: 45, EffectiveTaxRate: 40.8, NetIncome: 177554,
			},
		},
		{
			name: "splitting top rate with church tax",
			input: domain.TaxCalculationInput{
				TaxableIncome: 300000, AssessmentType: domain.AssessmentSplitting, ChurchTax: true,
			},
			want: domain.TaxCalculationResult{
				TaxableIncome: 300000, IncomeTax: 104794, SolidaritySurcharge: 5764, ChurchTax: 9431,
				TotalTax: 119989, MarginalTaxRate: 42, EffectiveTaxRate: 40, NetIncome: 180011,
			},
		},
		{
			name: "soli milderungszone",
			input: domain.TaxCalculationInput{
				TaxableIncome: 70000, AssessmentType: domain.AssessmentEinzel, ChurchTax: true,
			},
			want: domain.TaxCalculationResult{
				TaxableIncome: 70000, IncomeTax: 18797, SolidaritySurcharge: 79, ChurchTax: 1692,
				TotalTax: 20568, MarginalTaxRate: 42, EffectiveTaxRate: 29.4, NetIncome: 49432,
			},
		},
		{
			name: "children at the income threshold",
			input: domain.TaxCalculationInput{
				TaxableIncome: 60000, AssessmentType: domain.AssessmentEinzel, ChildrenCount: 2,
			},
			want: domain.TaxCalculationResult{
				TaxableIncome: 60000, IncomeTax: 14680, TotalTax: 14680,
				MarginalTaxRate: 39.6, EffectiveTaxRate: 24.5, NetIncome: 45320,
			},
		},
		{
			name: "children just above the income threshold",
			input: domain.TaxCalculationInput{
				TaxableIncome: 60001, AssessmentType: domain.AssessmentEinzel, ChildrenCount: 2,
			},
			want: domain.TaxCalculationResult{
				TaxableIncome: 60001, IncomeTax: 11155, TotalTax: 11155,
				MarginalTaxRate: 36.2, EffectiveTaxRate: 18.6, NetIncome: 48846, ChildAllowanceUsed: true,
			},
		},
		{
			name:  "negative income",
			input: einzel(-5000),
			want: domain.TaxCalculationResult{
				TaxableIncome: -5000, NetIncome: -5000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTax(cfg, tt.input)
			if got != tt.want {
				t.Errorf("CalculateTax() =\n%+v\nwant\n%+v", got, tt.want)
			}
		})
	}
}

func TestCalculateTax_ScenarioE_SoliIsMinimum(t *testing.T) {
	cfg := Tariff2025()
	result := CalculateTax(cfg, einzel(300000))

	tax := math.Floor(0.45*300000 - 18936.88)
	want := math.Min(tax*0.055, (tax-18130)*0.119)

	if result.IncomeTax != tax {
		t.Fatalf("income tax = %.0f, want %.0f", result.IncomeTax, tax)
	}
	if result.SolidaritySurcharge != math.Round(math.Floor(want*100)/100) {
		t.Errorf("soli = %.0f, want %.2f rounded", result.SolidaritySurcharge, want)
	}
}

func TestCalculateTax_ChildAllowanceUsesAdjustedBase(t *testing.T) {
	cfg := Tariff2025()

	withChildren := CalculateTax(cfg, domain.TaxCalculationInput{
		TaxableIncome: 80000, AssessmentType: domain.AssessmentEinzel, ChildrenCount: 2,
	})
	adjusted := CalculateTax(cfg, einzel(70688))

	if withChildren.IncomeTax != adjusted.IncomeTax {
		t.Errorf("income tax = %.0f, want tax on 70688 = %.0f", withChildren.IncomeTax, adjusted.IncomeTax)
	}
	if withChildren.NetIncome != 80000-withChildren.TotalTax {
		t.Errorf("net income must use the original income, got %.0f", withChildren.NetIncome)
	}
}

func TestCalculateTax_ChildAllowanceFloorsAtZero(t *testing.T) {
	cfg := Tariff2025()

	result := CalculateTax(cfg, domain.TaxCalculationInput{
		TaxableIncome: 61000, AssessmentType: domain.AssessmentEinzel, ChildrenCount: 20,
	})

	if !result.ChildAllowanceUsed {
		t.Error("expected child allowance to be used")
	}
	if result.IncomeTax != 0 || result.MarginalTaxRate != 0 {
		t.Errorf("expected zero tax, got %+v", result)
	}
	if result.NetIncome != 61000 {
		t.Errorf("net income = %.0f, want 61000", result.NetIncome)
	}
}

func TestCalculateTax_Invariants(t *testing.T) {
	cfg := Tariff2025()

	for income := 0.0; income <= 600000; income += 2345 {
		for _, assessment := range []domain.AssessmentType{domain.AssessmentEinzel, domain.AssessmentSplitting} {
			for _, church := range []bool{false, true} {
				for _, children := range []int{0, 1, 3} {
					input := domain.TaxCalculationInput{
						TaxableIncome:  income,
						AssessmentType: assessment,
						ChurchTax:      church,
						ChildrenCount:  children,
					}
					r := CalculateTax(cfg, input)

					if r.TotalTax != r.IncomeTax+r.SolidaritySurcharge+r.ChurchTax {
						t.Fatalf("%+v: total %.0f is not the sum of its parts", input, r.TotalTax)
					}
					if r.NetIncome != income-r.TotalTax {
						t.Fatalf("%+v: net %.0f != %.0f - %.0f", input, r.NetIncome, income, r.TotalTax)
					}
					if !church && r.ChurchTax != 0 {
						t.Fatalf("%+v: church tax %.0f without church membership", input, r.ChurchTax)
					}
					if r.IncomeTax <= cfg.SoliThreshold(assessment) && r.SolidaritySurcharge != 0 {
						t.Fatalf("%+v: soli %.0f below threshold", input, r.SolidaritySurcharge)
					}
					if income <= cfg.Grundfreibetrag && r.IncomeTax != 0 {
						t.Fatalf("%+v: income tax %.0f below allowance", input, r.IncomeTax)
					}
				}
			}
		}
	}
}

func TestCalculateTax_SplittingNeverWorse(t *testing.T) {
	cfg := Tariff2025()

	for income := 0.0; income <= 800000; income += 1234 {
		single := CalculateTax(cfg, einzel(income)).IncomeTax
		joint := CalculateTax(cfg, splitting(income)).IncomeTax

		if joint > single {
			t.Fatalf("splitting %.0f > single %.0f at %.0f", joint, single, income)
		}
		if income >= cfg.Grundfreibetrag+1000 && joint >= single {
			t.Fatalf("splitting %.0f not below single %.0f at %.0f", joint, single, income)
		}
	}
}

func TestCalculateTax_ChurchTaxByState(t *testing.T) {
	cfg := Tariff2025()
	input := domain.TaxCalculationInput{
		TaxableIncome: 70000, AssessmentType: domain.AssessmentEinzel, ChurchTax: true,
	}

	input.Bundesland = "by"
	if got := CalculateTax(cfg, input).ChurchTax; got != 1504 {
		t.Errorf("Bayern church tax = %.0f, want 1504", got)
	}

	input.Bundesland = "NW"
	if got := CalculateTax(cfg, input).ChurchTax; got != 1692 {
		t.Errorf("NRW church tax = %.0f, want 1692", got)
	}
}

func TestRateWrappers(t *testing.T) {
	cfg := Tariff2025()

	if got := EffectiveTaxRate(cfg, einzel(50000)); got != 21.8 {
		t.Errorf("EffectiveTaxRate = %.1f, want 21.8", got)
	}
	if got := MarginalTaxRate(cfg, einzel(50000)); got != 35.9 {
		t.Errorf("MarginalTaxRate = %.1f, want 35.9", got)
	}
	if got := EffectiveTaxRate(cfg, einzel(0)); got != 0 {
		t.Errorf("EffectiveTaxRate(0) = %.1f, want 0", got)
	}
}
