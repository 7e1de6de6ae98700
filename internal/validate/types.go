package validate

import "time"

// #region result
// Result is the outcome of validating one field's raw text.
// Exactly one of Value (accepted) or Reason (rejected) is meaningful.
type Result struct {
	Value  string
	Reason string
	OK     bool
}

// Accept wraps a normalized value in an accepted Result.
func Accept(value string) Result {
	return Result{Value: value, OK: true}
}

// Reject wraps a user-facing rejection reason in a rejected Result.
func Reject(reason string) Result {
	return Result{Reason: reason}
}

// #endregion result

// #region func
// Func validates one field's raw text. now feeds the date-sensitive
// validators; the rest ignore it.
type Func func(text string, now time.Time) Result

// #endregion func

// #region ids

// ID names a validator in the step registry.
type ID string

const (
	IDOwnerName   ID = "owner_name"
	IDPhone       ID = "phone"
	IDHandle      ID = "handle"
	IDAddress     ID = "address"
	IDPetName     ID = "pet_name"
	IDAgeOrDOB    ID = "age_or_dob"
	IDVaccineDate ID = "vaccine_date"
	IDTermMonths  ID = "term_months"
)

// Funcs maps validator IDs to their implementations.
var Funcs = map[ID]Func{
	IDOwnerName:   OwnerName,
	IDPhone:       Phone,
	IDHandle:      Handle,
	IDAddress:     Address,
	IDPetName:     PetName,
	IDAgeOrDOB:    AgeOrDOB,
	IDVaccineDate: VaccineDate,
	IDTermMonths:  TermMonths,
}

// #endregion ids
