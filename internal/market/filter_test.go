package market

import (
	"testing"
)

func TestBuildFilterParamsAppliesDefaults(t *testing.T) {
	p := BuildFilterParams(FieldValues{})
	if p != DefaultFilterParams() {
		t.Fatalf("blank fields should yield defaults, got %+v", p)
	}
}

func TestBuildFilterParamsParsesValues(t *testing.T) {
	p := BuildFilterParams(FieldValues{
		MinATHMarketCap:     "500000",
		MinCurrentMarketCap: "20000",
		MinDrawdown:         "50",
		MaxDrawdown:         "90",
		MaxResults:          "100",
	})
	if p.MinATHMarketCap != 500000 || p.MinCurrentMarketCap != 20000 {
		t.Fatalf("cap floors not parsed: %+v", p)
	}
	if p.MinDrawdown != 50 || p.MaxDrawdown != 90 {
		t.Fatalf("drawdown bounds not parsed: %+v", p)
	}
	if p.MaxResults != 100 {
		t.Fatalf("max results = %d, want 100", p.MaxResults)
	}
}

func TestValidateReportsFirstViolationOnly(t *testing.T) {
	cases := []struct {
		name   string
		params FilterParams
		want   error
	}{
		{
			name: "inverted drawdown bounds",
			params: FilterParams{
				MinATHMarketCap: 1, MinCurrentMarketCap: 1,
				MinDrawdown: 90, MaxDrawdown: 50, MaxResults: 10,
			},
			want: ErrDrawdownOrder,
		},
		{
			name: "equal drawdown bounds",
			params: FilterParams{
				MinATHMarketCap: 1, MinCurrentMarketCap: 1,
				MinDrawdown: 50, MaxDrawdown: 50, MaxResults: 10,
			},
			want: ErrDrawdownOrder,
		},
		{
			name: "negative cap floor",
			params: FilterParams{
				MinATHMarketCap: -1, MinCurrentMarketCap: 1,
				MinDrawdown: 50, MaxDrawdown: 90, MaxResults: 10,
			},
			want: ErrNegativeCap,
		},
		{
			name: "result count too large",
			params: FilterParams{
				MinATHMarketCap: 1, MinCurrentMarketCap: 1,
				MinDrawdown: 50, MaxDrawdown: 90, MaxResults: 500,
			},
			want: ErrResultRange,
		},
		{
			name: "result count too small",
			params: FilterParams{
				MinATHMarketCap: 1, MinCurrentMarketCap: 1,
				MinDrawdown: 50, MaxDrawdown: 90, MaxResults: 0,
			},
			want: ErrResultRange,
		},
		{
			name: "negative drawdown bound",
			params: FilterParams{
				MinATHMarketCap: 1, MinCurrentMarketCap: 1,
				MinDrawdown: -10, MaxDrawdown: 90, MaxResults: 10,
			},
			want: ErrNegativeDrawdown,
		},
		{
			name: "inverted bounds win over negative cap",
			params: FilterParams{
				MinATHMarketCap: -1, MinCurrentMarketCap: 1,
				MinDrawdown: 90, MaxDrawdown: 50, MaxResults: 10,
			},
			want: ErrDrawdownOrder,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.params.Validate(); err != tc.want {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateRejectsUnparseableDrawdown(t *testing.T) {
	p := BuildFilterParams(FieldValues{MinDrawdown: "abc"})
	if err := p.Validate(); err != ErrDrawdownOrder {
		t.Fatalf("NaN drawdown should fail the ordering rule, got %v", err)
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := DefaultFilterParams().Validate(); err != nil {
		t.Fatalf("defaults must be valid, got %v", err)
	}
}

func TestGroupDigits(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"5", "5"},
		{"500", "500"},
		{"5000", "5,000"},
		{"500000", "500,000"},
		{"2500000000", "2,500,000,000"},
		{"1,234a56", "123,456"},
	}
	for _, tc := range cases {
		if got := GroupDigits(tc.in); got != tc.want {
			t.Fatalf("GroupDigits(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
