package models

// RequirementType values as reported by the Henley visa-single endpoint
const (
	RequirementVisaFreeAccess                = "visa_free_access"
	RequirementVisaRequired                  = "visa_required"
	RequirementElectronicTravelAuthorisation = "electronic_travel_authorisation"
	RequirementVisaOnArrival                 = "visa_on_arrival"
	RequirementVisaOnline                    = "visa_online"
)

// KnownRequirementTypes lists the categories the source is known to return
var KnownRequirementTypes = []string{
	RequirementVisaFreeAccess,
	RequirementVisaRequired,
	RequirementElectronicTravelAuthorisation,
	RequirementVisaOnArrival,
	RequirementVisaOnline,
}

// reservedKeys are echoed identity fields of the origin, never categories
var reservedKeys = map[string]struct{}{
	"code":    {},
	"country": {},
}

// IsReservedKey reports whether key is an identity field of the visa-single payload
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// IsKnownRequirementType reports whether t is one of KnownRequirementTypes
func IsKnownRequirementType(t string) bool {
	for _, known := range KnownRequirementTypes {
		if known == t {
			return true
		}
	}
	return false
}
