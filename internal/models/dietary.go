package models

// DietaryPreference is one of the diets a profile can declare
type DietaryPreference string

const (
	DietVegan      DietaryPreference = "vegan"
	DietKeto       DietaryPreference = "keto"
	DietVegetarian DietaryPreference = "vegetarian"
	DietOmnivore   DietaryPreference = "omnivore"
)

// DietaryPreferences lists the accepted values in display order
var DietaryPreferences = []DietaryPreference{DietVegan, DietKeto, DietVegetarian, DietOmnivore}

func (d DietaryPreference) Valid() bool {
	for _, known := range DietaryPreferences {
		if d == known {
			return true
		}
	}
	return false
}
