package record

import (
	"strconv"

	corevalidation "github.com/bevalc-intelligence/cola-engine/foundation/core/validation"
	"github.com/bevalc-intelligence/cola-engine/foundation/utils/validationx"
)

// ttbIDPattern validates the registry's 14-digit opaque identifier shape.
// Applied only when non-empty; validateTTBID already reports the empty case.
var ttbIDPattern = validationx.Pattern(`^[0-9]{14}$`)

// phoneNumberPattern is deliberately permissive: the registry's "Phone
// Number:" field is operator-entered free text (dashes, parens, extensions),
// so this only rejects obviously non-numeric garbage rather than enforcing
// one dialing format.
var phoneNumberPattern = validationx.Pattern(`^[0-9()+\-.x ]{7,25}$`)

// Validate checks the record invariants: ttb_id present and well-formed,
// date/year-month-day consistency, the legacy rule, and the phone_number
// shape when present. It returns a corevalidation.ValidationResult so callers
// can report every violated invariant at once rather than stopping at the
// first one.
func (r *Record) Validate() corevalidation.ValidationResult {
	chain := corevalidation.NewValidatorChain("record").
		AddFunc(validateTTBID).
		AddFunc(validateTTBIDFormat).
		AddFunc(validateDateConsistency).
		AddFunc(validateLegacySignal).
		AddFunc(validateRefileCount).
		AddFunc(validatePhoneNumber)

	return chain.Validate(r)
}

func validateTTBID(value interface{}) corevalidation.ValidationResult {
	r := value.(*Record)
	if r.TTBID == "" {
		return corevalidation.NewValidationErrorWithField(
			"RECORD_MISSING_TTB_ID", "ttb_id", "ttb_id must not be empty", r.TTBID)
	}
	return corevalidation.NewValidationResult()
}

// validateTTBIDFormat enforces the registry's 14-digit ttb_id shape. Only
// checked when TTBID is non-empty, since validateTTBID already reports an
// empty id; any other id that is not exactly 14 digits is reported here.
func validateTTBIDFormat(value interface{}) corevalidation.ValidationResult {
	r := value.(*Record)
	if r.TTBID == "" {
		return corevalidation.NewValidationResult()
	}
	if res := ttbIDPattern(r.TTBID); !res.Valid {
		return corevalidation.NewValidationErrorWithField(
			"RECORD_INVALID_TTB_ID", "ttb_id", "ttb_id must be a 14-digit identifier", r.TTBID)
	}
	return corevalidation.NewValidationResult()
}

// validatePhoneNumber enforces a permissive shape on phone_number when set.
func validatePhoneNumber(value interface{}) corevalidation.ValidationResult {
	r := value.(*Record)
	if r.PhoneNumber == "" {
		return corevalidation.NewValidationResult()
	}
	if res := phoneNumberPattern(r.PhoneNumber); !res.Valid {
		return corevalidation.NewValidationErrorWithField(
			"RECORD_INVALID_PHONE", "phone_number", "phone_number does not match expected shape", r.PhoneNumber)
	}
	return corevalidation.NewValidationResult()
}

// validateDateConsistency enforces that if approval_date matches
// MM/DD/YYYY, year/month/day must equal its components.
func validateDateConsistency(value interface{}) corevalidation.ValidationResult {
	r := value.(*Record)
	wantYear, wantMonth, wantDay := DeriveDate(r.ApprovalDate)

	if wantYear == nil {
		if r.Year != nil || r.Month != nil || r.Day != nil {
			return corevalidation.NewValidationErrorWithField(
				"RECORD_DATE_INCONSISTENT", "approval_date",
				"year/month/day set despite unparseable approval_date", r.ApprovalDate)
		}
		return corevalidation.NewValidationResult()
	}

	if r.Year == nil || r.Month == nil || r.Day == nil ||
		*r.Year != *wantYear || *r.Month != *wantMonth || *r.Day != *wantDay {
		return corevalidation.NewValidationErrorWithField(
			"RECORD_DATE_INCONSISTENT", "approval_date",
			"year/month/day do not match approval_date components", r.ApprovalDate)
	}
	return corevalidation.NewValidationResult()
}

// validateLegacySignal enforces that signal is LEGACY iff the record
// qualifies as legacy.
func validateLegacySignal(value interface{}) corevalidation.ValidationResult {
	r := value.(*Record)
	if r.Signal == SignalUnset {
		return corevalidation.NewValidationResult()
	}
	if r.IsLegacy() != (r.Signal == SignalLegacy) {
		return corevalidation.NewValidationErrorWithField(
			"RECORD_LEGACY_MISMATCH", "signal",
			"signal must be LEGACY iff company_name or brand_name is empty", r.Signal)
	}
	return corevalidation.NewValidationResult()
}

// validateRefileCount enforces refile_count >= 0.
func validateRefileCount(value interface{}) corevalidation.ValidationResult {
	r := value.(*Record)
	if r.RefileCount < 0 {
		return corevalidation.NewValidationErrorWithField(
			"RECORD_NEGATIVE_REFILE_COUNT", "refile_count",
			"refile_count must be >= 0", strconv.Itoa(r.RefileCount))
	}
	return corevalidation.NewValidationResult()
}
