package record

import "testing"

func TestDeriveDate(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		ok      bool
		y, m, d int
	}{
		{"valid", "03/14/2021", true, 2021, 3, 14},
		{"blank", "", false, 0, 0, 0},
		{"wrong-separator", "2021-03-14", false, 0, 0, 0},
		{"month-out-of-range", "13/01/2021", false, 0, 0, 0},
		{"day-out-of-range", "01/32/2021", false, 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			y, m, d := DeriveDate(tc.input)
			if tc.ok {
				if y == nil || m == nil || d == nil {
					t.Fatalf("expected parse success for %q", tc.input)
				}
				if *y != tc.y || *m != tc.m || *d != tc.d {
					t.Fatalf("got (%d,%d,%d), want (%d,%d,%d)", *y, *m, *d, tc.y, tc.m, tc.d)
				}
			} else if y != nil || m != nil || d != nil {
				t.Fatalf("expected nil derivation for %q", tc.input)
			}
		})
	}
}

func TestIsLegacy(t *testing.T) {
	cases := []struct {
		name    string
		company string
		brand   string
		want    bool
	}{
		{"both-present", "ACME LLC", "Alpha", false},
		{"no-company", "", "Alpha", true},
		{"no-brand", "ACME LLC", "", true},
		{"neither", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Record{CompanyName: tc.company, BrandName: tc.brand}
			if got := r.IsLegacy(); got != tc.want {
				t.Fatalf("IsLegacy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Old No. 7":       "old-no-7",
		"Jack's Reserve!!": "jack-s-reserve",
		"  Spaced  Out  ": "spaced-out",
		"ALLCAPS":         "allcaps",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCategoryForClassCode(t *testing.T) {
	cases := map[string]string{
		"415":  "Whiskey",
		"4151": "Whiskey",
		"410":  "Vodka",
		"999":  "Other",
		"":     "Other",
	}
	for code, want := range cases {
		if got := CategoryForClassCode(code); got != want {
			t.Fatalf("CategoryForClassCode(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestCompanyKey(t *testing.T) {
	if got := CompanyKey(17, "Acme, LLC"); got != "id:17" {
		t.Fatalf("got %q", got)
	}
	if got := CompanyKey(0, "Acme, LLC"); got != "raw:ACME, LLC" {
		t.Fatalf("got %q", got)
	}
}

func TestValidate(t *testing.T) {
	y, m, d := 2021, 3, 14
	r := &Record{
		TTBID:        "12345678901234",
		ApprovalDate: "03/14/2021",
		Year:         &y, Month: &m, Day: &d,
		CompanyName: "ACME LLC",
		BrandName:   "Alpha",
		Signal:      SignalNewCompany,
	}
	if result := r.Validate(); !result.Valid {
		t.Fatalf("expected valid record, got errors: %+v", result.Errors)
	}

	bad := &Record{TTBID: "", ApprovalDate: "03/14/2021", Year: &y, Month: &m, Day: &d}
	if result := bad.Validate(); result.Valid {
		t.Fatalf("expected invalid record due to missing ttb_id")
	}
}
