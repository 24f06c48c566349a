package profile

import "strings"

// Completion returns how complete a profile is as a whole percentage in
// [0, 100]. Eight fields are tracked per profile type, each with equal
// weight: the four contact fields plus the four type-specific detail fields.
// A string field counts once it is non-nil and non-empty after trimming.
// A missing detail record contributes nothing rather than failing.
func Completion(p Profile) int {
	fields := []bool{
		populated(p.PhoneNumber),
		populated(p.Country),
		populated(p.City),
		populated(p.Address),
	}

	switch p.Type {
	case TypeBusiness:
		var d BusinessDetail
		if p.Business != nil {
			d = *p.Business
		}
		fields = append(fields,
			populated(d.BusinessName),
			populated(d.RegistrationNumber),
			populated(d.TaxID),
			populated(d.LegalRepresentativeName),
		)
	default:
		var d IndividualDetail
		if p.Individual != nil {
			d = *p.Individual
		}
		fields = append(fields,
			populated(d.FirstName),
			populated(d.LastName),
			d.DateOfBirth != nil,
			populated(d.NationalIDNumber),
		)
	}

	n := 0
	for _, ok := range fields {
		if ok {
			n++
		}
	}

	// round(100 * n / total) in integer arithmetic
	total := len(fields)
	return (100*n + total/2) / total
}

func populated(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
