// Package category assigns a store-aisle category to product names, used to
// pre-fill the category of products created from receipt scans and quick-add
// forms.
package category

import "strings"

// Suggest returns the aisle category for a product name. Matching is
// case-insensitive: exact match first, then substring match ordered
// more-specific first. Falls back to "Other".
func Suggest(productName string) string {
	name := strings.ToLower(strings.TrimSpace(productName))
	if name == "" {
		return "Other"
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return "Other"
}

var exactMatch = map[string]string{
	// Produce
	"apple":        "Produce",
	"apples":       "Produce",
	"banana":       "Produce",
	"bananas":      "Produce",
	"orange":       "Produce",
	"oranges":      "Produce",
	"lemon":        "Produce",
	"lime":         "Produce",
	"avocado":      "Produce",
	"tomato":       "Produce",
	"tomatoes":     "Produce",
	"potato":       "Produce",
	"potatoes":     "Produce",
	"onion":        "Produce",
	"onions":       "Produce",
	"garlic":       "Produce",
	"lettuce":      "Produce",
	"spinach":      "Produce",
	"broccoli":     "Produce",
	"carrots":      "Produce",
	"cucumber":     "Produce",
	"mushrooms":    "Produce",
	"grapes":       "Produce",
	"strawberries": "Produce",
	"blueberries":  "Produce",

	// Dairy & eggs
	"milk":       "Dairy",
	"eggs":       "Dairy",
	"butter":     "Dairy",
	"cheese":     "Dairy",
	"yogurt":     "Dairy",
	"sour cream": "Dairy",

	// Meat & seafood
	"chicken": "Meat & Seafood",
	"beef":    "Meat & Seafood",
	"pork":    "Meat & Seafood",
	"salmon":  "Meat & Seafood",
	"shrimp":  "Meat & Seafood",
	"bacon":   "Meat & Seafood",

	// Bakery
	"bread":      "Bakery",
	"bagels":     "Bakery",
	"tortillas":  "Bakery",
	"croissants": "Bakery",

	// Pantry
	"rice":          "Pantry",
	"pasta":         "Pantry",
	"flour":         "Pantry",
	"sugar":         "Pantry",
	"salt":          "Pantry",
	"olive oil":     "Pantry",
	"cereal":        "Pantry",
	"oats":          "Pantry",
	"peanut butter": "Pantry",

	// Beverages
	"coffee": "Beverages",
	"tea":    "Beverages",
	"juice":  "Beverages",
	"soda":   "Beverages",
	"water":  "Beverages",

	// Frozen
	"ice cream": "Frozen",

	// Household
	"paper towels":      "Household",
	"toilet paper":      "Household",
	"dish soap":         "Household",
	"trash bags":        "Household",
	"laundry detergent": "Household",
}

var substringMatches = []struct {
	keyword  string
	category string
}{
	// Keep compound keywords before their shorter substrings.
	{"ice cream", "Frozen"},
	{"frozen", "Frozen"},
	{"cream cheese", "Dairy"},
	{"yogurt", "Dairy"},
	{"cheese", "Dairy"},
	{"milk", "Dairy"},
	{"chicken", "Meat & Seafood"},
	{"turkey", "Meat & Seafood"},
	{"sausage", "Meat & Seafood"},
	{"fish", "Meat & Seafood"},
	{"bread", "Bakery"},
	{"bun", "Bakery"},
	{"muffin", "Bakery"},
	{"cake", "Bakery"},
	{"juice", "Beverages"},
	{"coffee", "Beverages"},
	{"soda", "Beverages"},
	{"beer", "Beverages"},
	{"wine", "Beverages"},
	{"sauce", "Pantry"},
	{"spice", "Pantry"},
	{"oil", "Pantry"},
	{"canned", "Pantry"},
	{"soup", "Pantry"},
	{"chips", "Snacks"},
	{"crackers", "Snacks"},
	{"cookie", "Snacks"},
	{"candy", "Snacks"},
	{"chocolate", "Snacks"},
	{"soap", "Household"},
	{"detergent", "Household"},
	{"cleaner", "Household"},
	{"paper", "Household"},
	{"shampoo", "Personal Care"},
	{"toothpaste", "Personal Care"},
	{"deodorant", "Personal Care"},
	{"lotion", "Personal Care"},
	{"berr", "Produce"},
	{"lettuce", "Produce"},
	{"pepper", "Produce"},
	{"fruit", "Produce"},
}
