// Package category maps free-text labels onto the user's known expense
// categories.
package category

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spendlens/backend/internal/model"
)

const (
	// exactMatchConfidence is reported when label and category name
	// contain each other case-insensitively.
	exactMatchConfidence = 0.9
	// keywordMatchConfidence is reported for keyword-table hits, which
	// are weaker evidence than direct containment.
	keywordMatchConfidence = 0.6
)

// categoryKeywords maps common merchant/item words to a canonical category
// name, used when direct containment finds nothing. Matching against the
// user's actual category list still decides whether a suggestion is made.
var categoryKeywords = map[string]string{
	"restaurant": "Food",
	"cafe":       "Food",
	"coffee":     "Food",
	"grocer":     "Food",
	"market":     "Food",
	"bakery":     "Food",
	"pizza":      "Food",
	"sushi":      "Food",

	"fuel":    "Transportation",
	"petrol":  "Transportation",
	"parking": "Transportation",
	"toll":    "Transportation",
	"taxi":    "Transportation",
	"train":   "Transportation",
	"bus":     "Transportation",

	"cinema":  "Entertainment",
	"movie":   "Entertainment",
	"theatre": "Entertainment",
	"concert": "Entertainment",
	"gaming":  "Entertainment",

	"store":       "Shopping",
	"shop":        "Shopping",
	"electronics": "Shopping",
	"clothing":    "Shopping",

	"pharmacy": "Healthcare",
	"chemist":  "Healthcare",
	"doctor":   "Healthcare",
	"medical":  "Healthcare",
	"dental":   "Healthcare",
	"hospital": "Healthcare",

	"electric":  "Utilities",
	"internet":  "Utilities",
	"phone":     "Utilities",
	"mobile":    "Utilities",
	"broadband": "Utilities",

	"hotel":   "Travel",
	"flight":  "Travel",
	"airline": "Travel",
	"airport": "Travel",

	"rent":     "Housing",
	"mortgage": "Housing",
	"lease":    "Housing",

	"school":     "Education",
	"university": "Education",
	"college":    "Education",
	"tuition":    "Education",
	"course":     "Education",
}

var (
	prefixPattern = regexp.MustCompile(`(?i)^(pos |eftpos |visa |mastercard |amex |paypal \*)`)
	longNumbers   = regexp.MustCompile(`\d{6,}`)
	specialChars  = regexp.MustCompile(`[*#]+`)
)

// Match maps a free-text label to one of the known categories using
// case-insensitive containment in both directions. The first category in
// slice order wins, so results are deterministic for identical inputs.
// It returns nil when no containment relation exists — "no idea" rather
// than a guess from weaker similarity metrics.
func Match(label string, categories []model.Category) *model.CategorySuggestion {
	cleaned := cleanLabel(label)
	if cleaned == "" {
		return nil
	}

	for _, cat := range categories {
		name := strings.ToLower(strings.TrimSpace(cat.Name))
		if name == "" {
			continue
		}
		if strings.Contains(cleaned, name) || strings.Contains(name, cleaned) {
			return &model.CategorySuggestion{
				CategoryID:   cat.ID,
				CategoryName: cat.Name,
				Confidence:   exactMatchConfidence,
			}
		}
	}
	return nil
}

// MatchWithKeywords first tries direct containment, then falls back to the
// keyword table. The keyword hit is only suggested when the implied
// category actually exists in the known list.
func MatchWithKeywords(label string, categories []model.Category) *model.CategorySuggestion {
	if s := Match(label, categories); s != nil {
		return s
	}

	cleaned := cleanLabel(label)
	for _, keyword := range keywordOrder() {
		if !strings.Contains(cleaned, keyword) {
			continue
		}
		canonical := categoryKeywords[keyword]
		for _, cat := range categories {
			if strings.EqualFold(cat.Name, canonical) {
				return &model.CategorySuggestion{
					CategoryID:   cat.ID,
					CategoryName: cat.Name,
					Confidence:   keywordMatchConfidence,
				}
			}
		}
	}
	return nil
}

var (
	keywordOrderOnce sync.Once
	sortedKeywords   []string
)

// keywordOrder returns the keyword table keys in a stable order so that
// matching stays deterministic for identical inputs.
func keywordOrder() []string {
	keywordOrderOnce.Do(func() {
		sortedKeywords = make([]string, 0, len(categoryKeywords))
		for k := range categoryKeywords {
			sortedKeywords = append(sortedKeywords, k)
		}
		sort.Strings(sortedKeywords)
	})
	return sortedKeywords
}

// cleanLabel strips card-terminal prefixes, long reference numbers and
// special characters before matching.
func cleanLabel(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))
	lower = prefixPattern.ReplaceAllString(lower, "")
	lower = longNumbers.ReplaceAllString(lower, "")
	lower = specialChars.ReplaceAllString(lower, "")
	return strings.TrimSpace(lower)
}

// FormatLabel formats a raw merchant/item label for display: terminal junk
// removed, title-cased, capped at 50 characters.
func FormatLabel(raw string) string {
	cleaned := cleanLabel(raw)

	caser := cases.Title(language.English)
	words := strings.Fields(cleaned)
	for i, word := range words {
		if len(word) > 2 {
			words[i] = caser.String(word)
		} else {
			words[i] = strings.ToUpper(word)
		}
	}

	result := strings.Join(words, " ")
	if runes := []rune(result); len(runes) > 50 {
		result = string(runes[:50])
	}
	return result
}
