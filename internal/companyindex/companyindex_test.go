package companyindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bevalc-intelligence/cola-engine/internal/platform/config"
	"github.com/bevalc-intelligence/cola-engine/internal/remotestore"
	"github.com/bevalc-intelligence/cola-engine/foundation/utils/slicex"
)

func TestPreferBrandName(t *testing.T) {
	cases := []struct {
		candidate, current string
		want               bool
	}{
		{"Old No. 7 Reserve", "Old No. 7", true},
		{"Old No. 7", "Old No. 7 Reserve", false},
		{"Alpha", "Beta", true},
		{"Beta", "Alpha", false},
	}
	for _, tc := range cases {
		if got := preferBrandName(tc.candidate, tc.current); got != tc.want {
			t.Fatalf("preferBrandName(%q, %q) = %v, want %v", tc.candidate, tc.current, got, tc.want)
		}
	}
}

func TestMergeDuplicateCompaniesDistinctDetection(t *testing.T) {
	// Mirrors the distinct-ids-then-min logic MergeDuplicateCompanies applies
	// per alias group: a group is only rewritten when it spans more than one
	// company_id, and the rewrite target is always the smallest id.
	cases := []struct {
		ids         []int64
		wantRewrite bool
		wantMinID   int64
	}{
		{[]int64{5, 5, 5}, false, 5},
		{[]int64{7, 3, 9}, true, 3},
		{nil, false, 0},
	}
	for _, tc := range cases {
		unique := slicex.Unique(tc.ids)
		gotRewrite := len(unique) >= 2
		if gotRewrite != tc.wantRewrite {
			t.Fatalf("Unique(%v) distinct-check = %v, want %v", tc.ids, gotRewrite, tc.wantRewrite)
		}
		if tc.wantRewrite {
			minID, ok := slicex.Min(tc.ids)
			if !ok || minID != tc.wantMinID {
				t.Fatalf("Min(%v) = (%d, %v), want %d", tc.ids, minID, ok, tc.wantMinID)
			}
		}
	}
}

func TestDiscoverNewCompaniesAndBrands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req remotestore.Statement
		json.NewDecoder(r.Body).Decode(&req)
		var result remotestore.Result
		switch {
		case contains(req.SQL, "company_name"):
			result = remotestore.Result{Success: true, Results: []map[string]interface{}{
				{"company_name": "ACME LLC"},
			}}
		case contains(req.SQL, "brand_name"):
			result = remotestore.Result{Success: true, Results: []map[string]interface{}{
				{"brand_name": "Alpha"}, {"brand_name": "Beta"},
			}}
		default:
			result = remotestore.Result{Success: true}
		}
		json.NewEncoder(w).Encode(struct {
			Success bool                 `json:"success"`
			Result  []remotestore.Result `json:"result"`
		}{Success: true, Result: []remotestore.Result{result}})
	}))
	defer srv.Close()

	client := remotestore.New(config.RemoteCredentials{Endpoint: srv.URL, APIToken: "t"})

	companies, err := DiscoverNewCompanies(context.Background(), client)
	if err != nil {
		t.Fatalf("DiscoverNewCompanies: %v", err)
	}
	if len(companies) != 1 || companies[0].RawName != "ACME LLC" {
		t.Fatalf("got %+v", companies)
	}

	brands, err := DiscoverBrandObservations(context.Background(), client)
	if err != nil {
		t.Fatalf("DiscoverBrandObservations: %v", err)
	}
	if len(brands) != 2 {
		t.Fatalf("got %+v", brands)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}
