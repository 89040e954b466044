// Package chatbot answers canned questions about the catalog.
//
// Rules are checked in order and the first match wins. Matching is plain
// case-insensitive substring search; product names are tried in catalog
// order, so with "Widget" and "Widget Pro" the earlier one wins.
package chatbot

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/pkg/collection"
)

// Rule names, also used as the metrics label.
const (
	RuleEmpty        = "empty"
	RuleCount        = "count"
	RulePrice        = "price"
	RuleTotal        = "total"
	RuleAverage      = "average"
	RuleHighest      = "highest"
	RuleLowest       = "lowest"
	RulePriceUnknown = "price_unknown"
	RuleFavorites    = "favorites"
	RuleGreeting     = "greeting"
	RuleSmallTalk    = "small_talk"
	RuleThanks       = "thanks"
	RuleFallback     = "fallback"
)

const (
	msgEmpty        = "There are no products in the database yet."
	msgPriceUnknown = "Sorry, I couldn't find that product. Try asking about product count, prices, or favorites."
	msgGreeting     = "Hello! How can I help you with your products?"
	msgSmallTalk    = "I'm just a bot, but I'm here to help!"
	msgThanks       = "You're welcome!"
	msgFallback     = "Sorry, I didn't understand that. Try asking about product count, prices, or favorites."
)

// Reply is the chosen answer and the rule that produced it.
type Reply struct {
	Rule string
	Text string
}

// Respond returns the answer text for message given the current catalog.
func Respond(message string, products []models.Product) string {
	return Match(message, products).Text
}

// Match runs the rule cascade.
func Match(message string, products []models.Product) Reply {
	if len(products) == 0 {
		return Reply{RuleEmpty, msgEmpty}
	}

	msg := strings.ToLower(message)

	switch {
	case isCountQuestion(msg):
		return Reply{RuleCount, fmt.Sprintf("There are %d products.", len(products))}
	case strings.Contains(msg, "price"):
		return matchPrice(msg, products)
	case strings.Contains(msg, "favorite"):
		favorites := collection.Filter(products, func(p models.Product) bool { return p.Favorite })
		return Reply{RuleFavorites, fmt.Sprintf("You have %d favorite products.", len(favorites))}
	case containsAny(msg, "hello", "hi", "hey"):
		return Reply{RuleGreeting, msgGreeting}
	case strings.Contains(msg, "how are you"):
		return Reply{RuleSmallTalk, msgSmallTalk}
	case strings.Contains(msg, "thank"):
		return Reply{RuleThanks, msgThanks}
	default:
		return Reply{RuleFallback, msgFallback}
	}
}

func isCountQuestion(msg string) bool {
	return (strings.Contains(msg, "how many") && strings.Contains(msg, "product")) ||
		strings.Contains(msg, "product count") ||
		strings.Contains(msg, "number of products")
}

// matchPrice covers "price of", "price for" and a bare "price".
func matchPrice(msg string, products []models.Product) Reply {
	if p, ok := collection.First(products, func(p models.Product) bool {
		return strings.Contains(msg, strings.ToLower(p.Name))
	}); ok {
		return Reply{RulePrice, fmt.Sprintf("The price of %s is $%s.", p.Name, formatPrice(p.Price))}
	}

	prices := collection.Map(products, func(p models.Product) decimal.Decimal {
		return decimal.NewFromFloat(p.Price)
	})
	head, rest := prices[0], prices[1:]

	switch {
	case containsAny(msg, "total", "sum"):
		return Reply{RuleTotal, "The total price of all products is $" + money(decimal.Sum(head, rest...)) + "."}
	case containsAny(msg, "average", "mean"):
		return Reply{RuleAverage, "The average price is $" + money(decimal.Avg(head, rest...)) + "."}
	case containsAny(msg, "max", "highest"):
		return Reply{RuleHighest, "The highest price is $" + money(decimal.Max(head, rest...)) + "."}
	case containsAny(msg, "min", "lowest"):
		return Reply{RuleLowest, "The lowest price is $" + money(decimal.Min(head, rest...)) + "."}
	default:
		return Reply{RulePriceUnknown, msgPriceUnknown}
	}
}

// money rounds the binary value to two places, half to even, so 1.005
// (stored as 1.00499...) prints as "1.00".
func money(d decimal.Decimal) string {
	return strconv.FormatFloat(d.InexactFloat64(), 'f', 2, 64)
}

// formatPrice prints the stored price exactly: the shortest form that
// round-trips, always with a fractional part ("10.0", "9.99"), and in
// exponent form outside [1e-4, 1e16).
func formatPrice(p float64) string {
	abs := math.Abs(p)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(p, 'e', -1, 64)
	}
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func containsAny(msg string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
