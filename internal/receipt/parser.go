package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spendlens/backend/internal/model"
)

const (
	// maxItemAmount is the plausibility bound for a single line item.
	// Amounts at or above it are almost always totals, card numbers or
	// OCR noise.
	maxItemAmount = 1000.0

	storeScanLines = 3
)

var (
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	timeRe      = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\s*(?:[AaPp][Mm])?\b`)

	// itemLineRe matches "<description> <optional $><amount with exactly
	// two decimals>" anchored to the end of the line.
	itemLineRe = regexp.MustCompile(`^(.+?)\s+\$?(\d+(?:,\d{3})*\.\d{2})$`)

	// currencyRe finds the first currency-like amount anywhere in a line.
	// The integer part accepts any digit run so ungrouped amounts like
	// 1234.56 are captured whole instead of losing their leading digits.
	currencyRe = regexp.MustCompile(`\$?(\d+(?:,\d{3})*\.\d{2})`)

	// numericLikeRe matches lines made entirely of digits, currency and
	// separator characters — phone numbers, dates, amounts, dividers.
	numericLikeRe = regexp.MustCompile(`^[\d\s$.,:/\-#*=_]+$`)
)

// excludedItemKeywords reject summary lines from item detection.
var excludedItemKeywords = []string{"TOTAL", "TAX", "SUBTOTAL"}

// paymentKeywords identify the tender line on a receipt.
var paymentKeywords = []string{"CASH", "CREDIT", "DEBIT", "CARD"}

// Parse extracts a best-effort structured receipt from raw text. It is
// total: it never fails, worst case returning an empty receipt dated today.
// Extraction runs as an ordered pipeline of independent stages:
// store -> date/time -> items -> totals -> payment.
func Parse(raw string) model.ParsedReceipt {
	lines := NormalizeLines(raw)

	parsed := model.ParsedReceipt{
		Date:  time.Now().Format("2006-01-02"),
		Items: []model.LineItem{},
	}

	parsed.Store = detectStore(lines)
	if date, ok := detectDate(lines); ok {
		parsed.Date = date
	}
	parsed.Time = detectTime(lines)
	parsed.Items = detectItems(lines, parsed.Date)
	parsed.Totals = detectTotals(lines)
	parsed.PaymentMethod = detectPayment(lines)

	return parsed
}

// detectStore scans the first few lines for the merchant header. The first
// line that is not purely numeric/currency-like is the store name; the line
// after it (when it is not itself a date) is taken as the address.
func detectStore(lines []string) *model.StoreInfo {
	limit := storeScanLines
	if len(lines) < limit {
		limit = len(lines)
	}

	for i := 0; i < limit; i++ {
		line := lines[i]
		if numericLikeRe.MatchString(line) {
			continue
		}
		info := &model.StoreInfo{Name: line}
		if i+1 < len(lines) && !isDateLine(lines[i+1]) && !numericLikeRe.MatchString(lines[i+1]) {
			info.Address = lines[i+1]
		}
		return info
	}
	return nil
}

func isDateLine(line string) bool {
	return slashDateRe.MatchString(line) || isoDateRe.MatchString(line)
}

// detectDate returns the first parseable date found in any line, in
// ISO-8601 form. The second return is false when no line yields a date.
func detectDate(lines []string) (string, bool) {
	for _, line := range lines {
		if m := isoDateRe.FindStringSubmatch(line); m != nil {
			if date, ok := buildDate(m[1], m[2], m[3]); ok {
				return date, true
			}
		}
		if m := slashDateRe.FindStringSubmatch(line); m != nil {
			if date, ok := parseSlashDate(m[1], m[2], m[3]); ok {
				return date, true
			}
		}
	}
	return "", false
}

// parseSlashDate interprets D/D/D{2,4} as month/day/year, swapping the
// first two fields when the leading one cannot be a month.
func parseSlashDate(first, second, year string) (string, bool) {
	if len(year) == 2 {
		year = "20" + year
	}
	month, day := first, second
	if m, _ := strconv.Atoi(month); m > 12 {
		month, day = day, month
	}
	return buildDate(year, month, day)
}

func buildDate(year, month, day string) (string, bool) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject those.
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// detectTime returns the first time-of-day match across all lines.
func detectTime(lines []string) string {
	for _, line := range lines {
		if m := timeRe.FindString(line); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// detectItems extracts purchased line items in source order. Summary lines
// and implausible amounts are rejected; category assignment is deferred to
// the matcher/AI step, so CategoryID stays zero here.
func detectItems(lines []string, date string) []model.LineItem {
	items := []model.LineItem{}
	for _, line := range lines {
		m := itemLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		desc := strings.TrimSpace(m[1])
		if desc == "" || containsAnyFold(desc, excludedItemKeywords) {
			continue
		}
		if numericLikeRe.MatchString(desc) {
			continue
		}

		amount := parseAmount(m[2])
		if amount <= 0 || amount >= maxItemAmount {
			continue
		}

		items = append(items, model.LineItem{
			Description: desc,
			Amount:      amount,
			Date:        date,
		})
	}
	return items
}

// detectTotals scans for the printed subtotal, tax and total lines. The
// subtotal check runs before the total check so "SUBTOTAL" lines are never
// consumed as the grand total. The first amount found per field wins.
func detectTotals(lines []string) model.ReceiptTotals {
	var totals model.ReceiptTotals
	for _, line := range lines {
		upper := strings.ToUpper(line)
		amount, ok := firstAmount(line)
		if !ok {
			continue
		}
		switch {
		case strings.Contains(upper, "SUBTOTAL"):
			if totals.Subtotal == 0 {
				totals.Subtotal = amount
			}
		case strings.Contains(upper, "TAX"):
			if totals.Tax == 0 {
				totals.Tax = amount
			}
		case strings.Contains(upper, "TOTAL"):
			if totals.Total == 0 {
				totals.Total = amount
			}
		}
	}
	return totals
}

// detectPayment returns the first line mentioning a tender type, verbatim.
func detectPayment(lines []string) string {
	for _, line := range lines {
		if containsAnyFold(line, paymentKeywords) {
			return line
		}
	}
	return ""
}

func firstAmount(line string) (float64, bool) {
	m := currencyRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	return parseAmount(m[1]), true
}

func parseAmount(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func containsAnyFold(s string, keywords []string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range keywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
