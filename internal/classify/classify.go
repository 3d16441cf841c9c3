// Package classify implements the chronological, two-pass batch classifier:
// Pass 1 assigns each record's first-observation signal, Pass 2 computes
// per-SKU refile counts, and Pass 3 groups the resulting updates for
// efficient batched writes back to the remote store.
package classify

import (
	"sort"
	"strings"

	"github.com/bevalc-intelligence/cola-engine/foundation/utils/slicex"
	"github.com/bevalc-intelligence/cola-engine/internal/record"
)

// skuKey identifies a (company, brand, fanciful name) triple, all three
// components already normalized to the classifier's comparison case.
type skuKey struct {
	company  string
	brand    string
	fanciful string
}

// brandKey identifies a (company, brand) pair.
type brandKey struct {
	company string
	brand   string
}

// Outcome is the classifier's verdict for one record.
type Outcome struct {
	TTBID       string
	Signal      record.Signal
	RefileCount int
}

// AliasIndex maps an upper-cased raw company name to its resolved
// company_id. A record with no entry is "orphaned" and classified by its
// raw, upper-cased company name instead.
type AliasIndex map[string]int64

// Lookup resolves companyName's id, or 0 if the name has no alias.
func (a AliasIndex) Lookup(companyName string) int64 {
	return a[strings.ToUpper(strings.TrimSpace(companyName))]
}

// Input is one record presented to the classifier, already ordered
// chronologically by the caller: ascending (year, month, day), ties broken
// by ascending ttb_id.
type Input struct {
	TTBID       string
	CompanyName string
	BrandName   string
	Fanciful    string
	CompanyID   int64 // 0 if orphaned; resolved via AliasIndex by the caller
}

// classifierState holds the three seen-sets and the first-instance map that
// Pass 1 builds and Pass 2 consumes. Each is a plain associative container
// with value-typed keys, so no references cross between them. ClassifyPass1
// returns firstInstance itself (not a copy) for Pass 2; the rest of the state
// is dropped when Pass 1 returns.
type classifierState struct {
	seenCompanies map[string]bool
	seenBrands    map[brandKey]bool
	seenSkus      map[skuKey]bool
	firstInstance map[skuKey]string
}

func newClassifierState() *classifierState {
	return &classifierState{
		seenCompanies: make(map[string]bool),
		seenBrands:    make(map[brandKey]bool),
		seenSkus:      make(map[skuKey]bool),
		firstInstance: make(map[skuKey]string),
	}
}

// companyKeyFor returns the key used to group "seen" company state: the
// alias-resolved company_id if known, otherwise the upper-cased raw name.
func companyKeyFor(in Input) string {
	return record.CompanyKey(in.CompanyID, in.CompanyName)
}

func skuKeyFor(in Input) skuKey {
	return skuKey{
		company:  companyKeyFor(in),
		brand:    strings.ToLower(strings.TrimSpace(in.BrandName)),
		fanciful: strings.ToLower(strings.TrimSpace(in.Fanciful)),
	}
}

func brandKeyFor(in Input) brandKey {
	k := skuKeyFor(in)
	return brandKey{company: k.company, brand: k.brand}
}

// ClassifyPass1 assigns the first-observation signal to every input, in the
// order given (the caller is responsible for chronological ordering). It
// returns one Outcome per input (RefileCount left at 0; Pass 2 fills it in)
// plus the first-instance map Pass 2 needs.
func ClassifyPass1(inputs []Input) (outcomes []Outcome, firstInstance map[skuKey]string) {
	state := newClassifierState()
	outcomes = make([]Outcome, len(inputs))

	for i, in := range inputs {
		if strings.TrimSpace(in.CompanyName) == "" || strings.TrimSpace(in.BrandName) == "" {
			outcomes[i] = Outcome{TTBID: in.TTBID, Signal: record.SignalLegacy}
			continue
		}

		companyKey := companyKeyFor(in)
		brand := brandKeyFor(in)
		sku := skuKeyFor(in)

		switch {
		case !state.seenCompanies[companyKey]:
			state.seenCompanies[companyKey] = true
			state.seenBrands[brand] = true
			state.seenSkus[sku] = true
			state.firstInstance[sku] = in.TTBID
			outcomes[i] = Outcome{TTBID: in.TTBID, Signal: record.SignalNewCompany}

		case !state.seenBrands[brand]:
			state.seenBrands[brand] = true
			state.seenSkus[sku] = true
			state.firstInstance[sku] = in.TTBID
			outcomes[i] = Outcome{TTBID: in.TTBID, Signal: record.SignalNewBrand}

		case !state.seenSkus[sku]:
			state.seenSkus[sku] = true
			state.firstInstance[sku] = in.TTBID
			outcomes[i] = Outcome{TTBID: in.TTBID, Signal: record.SignalNewSKU}

		default:
			outcomes[i] = Outcome{TTBID: in.TTBID, Signal: record.SignalRefile}
		}
	}

	return outcomes, state.firstInstance
}

// ClassifyPass2 walks the same ordered inputs again, counting occurrences
// per SKU key, and sets RefileCount on each first-instance outcome to
// (total occurrences of its SKU) - 1.
func ClassifyPass2(inputs []Input, outcomes []Outcome, firstInstance map[skuKey]string) []Outcome {
	occurrences := make(map[skuKey]int)
	for _, in := range inputs {
		if strings.TrimSpace(in.CompanyName) == "" || strings.TrimSpace(in.BrandName) == "" {
			continue
		}
		occurrences[skuKeyFor(in)]++
	}

	byTTBID := make(map[string]int, len(outcomes))
	for i, o := range outcomes {
		byTTBID[o.TTBID] = i
	}

	for sku, ttbID := range firstInstance {
		count := occurrences[sku]
		if idx, ok := byTTBID[ttbID]; ok {
			outcomes[idx].RefileCount = count - 1
		}
	}

	return outcomes
}

// UpdateGroup is one (signal, refile_count) bucket of ttb_ids, ready for a
// single grouped UPDATE statement.
type UpdateGroup struct {
	Signal      record.Signal
	RefileCount int
	TTBIDs      []string
}

const maxKeysPerUpdate = 500

// GroupUpdates implements Pass 3: group ttb_ids by (signal, refile_count)
// and chunk each group's id list to at most maxKeysPerUpdate, so the
// resulting UPDATE ... WHERE ttb_id IN (...) statements stay well under any
// request-size limit.
func GroupUpdates(outcomes []Outcome) []UpdateGroup {
	type key struct {
		signal      record.Signal
		refileCount int
	}
	grouped := map[key][]string{}
	for _, o := range outcomes {
		k := key{o.Signal, o.RefileCount}
		grouped[k] = append(grouped[k], o.TTBID)
	}

	keys := make([]key, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].signal != keys[j].signal {
			return keys[i].signal < keys[j].signal
		}
		return keys[i].refileCount < keys[j].refileCount
	})

	var groups []UpdateGroup
	for _, k := range keys {
		ids := grouped[k]
		for _, chunk := range slicex.Chunk(ids, maxKeysPerUpdate) {
			groups = append(groups, UpdateGroup{Signal: k.signal, RefileCount: k.refileCount, TTBIDs: chunk})
		}
	}
	return groups
}
