package models

import "github.com/gosimple/slug"

// Diet is one of the dietary categories a user can pick at sign up.
type Diet string

const (
	Vegetarian    Diet = "Vegetarian"
	NonVegetarian Diet = "Non-Vegetarian"
	Vegan         Diet = "Vegan"
	Jain          Diet = "Jain"
	Keto          Diet = "Keto"
	Paleo         Diet = "Paleo"
)

// DefaultDiet is preselected on a fresh form.
const DefaultDiet = Vegetarian

var diets = []Diet{Vegetarian, NonVegetarian, Vegan, Jain, Keto, Paleo}

var dietDescriptions = map[Diet]string{
	Vegetarian:    "No meat or fish. Dairy and eggs are fine.",
	NonVegetarian: "Everything on the menu, including meat, fish and eggs.",
	Vegan:         "Plant based only. No dairy, eggs, honey or other animal products.",
	Jain:          "Vegetarian without root vegetables, onion or garlic.",
	Keto:          "Very low carb and high fat to keep the body in ketosis.",
	Paleo:         "Whole foods only: meat, fish, vegetables, fruit and nuts. No grains or dairy.",
}

// Diets returns the supported diets in display order.
func Diets() []Diet {
	out := make([]Diet, len(diets))
	copy(out, diets)
	return out
}

func (d Diet) String() string { return string(d) }

// Slug is the URL and DOM friendly form of the diet name, e.g. "non-vegetarian".
func (d Diet) Slug() string { return slug.Make(string(d)) }

// Description is the short explanatory copy shown in the diet catalogue.
func (d Diet) Description() string { return dietDescriptions[d] }
