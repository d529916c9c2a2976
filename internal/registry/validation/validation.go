package validation

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"clientregistry/internal/registry/models"
	"clientregistry/pkg/text"
)

// Field names match the JSON field names of the draft so error maps can
// be rendered directly against form inputs.
type Field string

const (
	FieldName      Field = "name"
	FieldEmail     Field = "email"
	FieldTelephone Field = "telephone"
	FieldCNPJ      Field = "cnpj"
	FieldCEP       Field = "cep"
	FieldAddress   Field = "address"
	FieldCity      Field = "city"
)

// Result reports a whole-form validation run. Errors is empty iff Valid.
type Result struct {
	Valid  bool
	Errors map[Field]string
}

// Required is satisfied by any non-blank value after trimming.
func Required(v string) bool {
	return strings.TrimSpace(v) != ""
}

// Email requires a standard local@domain.tld shape.
func Email(v string) bool {
	return govalidator.IsEmail(v)
}

// Telephone accepts 10 or 11 digits: landline or mobile with area code.
func Telephone(v string) bool {
	n := text.DigitLen(v)
	return n == 10 || n == 11
}

// CNPJ accepts 11 digits (CPF, individual) or 14 (CNPJ, organization).
// No checksum validation.
func CNPJ(v string) bool {
	n := text.DigitLen(v)
	return n == 11 || n == 14
}

// CEP requires exactly 8 digits. Used standalone by the reconciler; never
// required at the form level.
func CEP(v string) bool {
	return text.DigitLen(v) == 8
}

// ValidateField checks a single value against the rules for its field.
// City has no rule of its own and is always valid.
func ValidateField(f Field, v string) bool {
	switch f {
	case FieldName, FieldAddress:
		return Required(v)
	case FieldEmail:
		return Required(v) && Email(v)
	case FieldTelephone:
		return Required(v) && Telephone(v)
	case FieldCNPJ:
		return Required(v) && CNPJ(v)
	case FieldCEP:
		return CEP(v)
	default:
		return true
	}
}

// ValidateForm evaluates every field independently and aggregates each
// field's first failing rule. CEP and City are never required here; they
// are filled in by the address reconciler when possible.
func ValidateForm(d models.Draft) Result {
	errors := make(map[Field]string)

	if !Required(d.Name) {
		errors[FieldName] = "client name is required"
	}

	if !Required(d.Email) {
		errors[FieldEmail] = "email is required"
	} else if !Email(d.Email) {
		errors[FieldEmail] = "email is invalid"
	}

	if !Required(d.Telephone) {
		errors[FieldTelephone] = "telephone is required"
	} else if !Telephone(d.Telephone) {
		errors[FieldTelephone] = "telephone is invalid"
	}

	if !Required(d.CNPJ) {
		errors[FieldCNPJ] = "cnpj is required"
	} else if !CNPJ(d.CNPJ) {
		errors[FieldCNPJ] = "cnpj is invalid"
	}

	if !Required(d.Address) {
		errors[FieldAddress] = "address is required"
	}

	return Result{Valid: len(errors) == 0, Errors: errors}
}

// ErrorStrings converts the typed error map to plain strings for the
// transport layer.
func (r Result) ErrorStrings() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for f, msg := range r.Errors {
		out[string(f)] = msg
	}
	return out
}
