package matching

import "lifebridge/internal/registry/models"

// bloodRecipients maps a donor blood type to the recipient types it can
// serve under standard ABO/Rh rules. O- is the universal donor; AB+ the
// universal recipient.
var bloodRecipients = map[models.BloodType][]models.BloodType{
	models.BloodONeg:  {models.BloodONeg, models.BloodOPos, models.BloodANeg, models.BloodAPos, models.BloodBNeg, models.BloodBPos, models.BloodABNeg, models.BloodABPos},
	models.BloodOPos:  {models.BloodOPos, models.BloodAPos, models.BloodBPos, models.BloodABPos},
	models.BloodANeg:  {models.BloodANeg, models.BloodAPos, models.BloodABNeg, models.BloodABPos},
	models.BloodAPos:  {models.BloodAPos, models.BloodABPos},
	models.BloodBNeg:  {models.BloodBNeg, models.BloodBPos, models.BloodABNeg, models.BloodABPos},
	models.BloodBPos:  {models.BloodBPos, models.BloodABPos},
	models.BloodABNeg: {models.BloodABNeg, models.BloodABPos},
	models.BloodABPos: {models.BloodABPos},
}

// BloodCompatible reports whether a donor of the given type can donate to
// a recipient of the given type. Unknown types are never compatible.
func BloodCompatible(donor, recipient models.BloodType) bool {
	for _, r := range bloodRecipients[donor] {
		if r == recipient {
			return true
		}
	}
	return false
}
