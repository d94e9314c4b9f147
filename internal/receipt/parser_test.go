package receipt

import (
	"testing"
	"time"
)

const sampleReceipt = "Walmart\n123 Main St\n01/15/2024\nMilk 3.99\nBread 2.50\nSUBTOTAL 6.49\nTAX 0.52\nTOTAL 7.01\nCREDIT CARD"

func TestParse_FullReceipt(t *testing.T) {
	parsed := Parse(sampleReceipt)

	if parsed.Store == nil {
		t.Fatal("expected store to be detected")
	}
	if parsed.Store.Name != "Walmart" {
		t.Errorf("expected store name %q, got %q", "Walmart", parsed.Store.Name)
	}
	if parsed.Store.Address != "123 Main St" {
		t.Errorf("expected address %q, got %q", "123 Main St", parsed.Store.Address)
	}
	if parsed.Date != "2024-01-15" {
		t.Errorf("expected date 2024-01-15, got %q", parsed.Date)
	}

	if len(parsed.Items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(parsed.Items), parsed.Items)
	}
	if parsed.Items[0].Description != "Milk" || parsed.Items[0].Amount != 3.99 {
		t.Errorf("unexpected first item: %+v", parsed.Items[0])
	}
	if parsed.Items[1].Description != "Bread" || parsed.Items[1].Amount != 2.50 {
		t.Errorf("unexpected second item: %+v", parsed.Items[1])
	}

	if parsed.Totals.Subtotal != 6.49 {
		t.Errorf("expected subtotal 6.49, got %v", parsed.Totals.Subtotal)
	}
	if parsed.Totals.Tax != 0.52 {
		t.Errorf("expected tax 0.52, got %v", parsed.Totals.Tax)
	}
	if parsed.Totals.Total != 7.01 {
		t.Errorf("expected total 7.01, got %v", parsed.Totals.Total)
	}

	if parsed.PaymentMethod != "CREDIT CARD" {
		t.Errorf("expected payment method CREDIT CARD, got %q", parsed.PaymentMethod)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	parsed := Parse("")

	if parsed.Store != nil {
		t.Errorf("expected nil store, got %+v", parsed.Store)
	}
	if parsed.Items == nil || len(parsed.Items) != 0 {
		t.Errorf("expected empty (non-nil) items, got %+v", parsed.Items)
	}
	today := time.Now().Format("2006-01-02")
	if parsed.Date != today {
		t.Errorf("expected date to default to today (%s), got %q", today, parsed.Date)
	}
	if parsed.Totals.Subtotal != 0 || parsed.Totals.Tax != 0 || parsed.Totals.Total != 0 {
		t.Errorf("expected empty totals, got %+v", parsed.Totals)
	}
}

func TestParse_DateAlwaysValidISO(t *testing.T) {
	inputs := []string{
		"",
		"garbage text with no structure",
		"13/45/9999 nonsense date",
		"Store\n99/99/99",
		"2024-02-30 invalid leap",
	}
	for _, in := range inputs {
		parsed := Parse(in)
		if _, err := time.Parse("2006-01-02", parsed.Date); err != nil {
			t.Errorf("input %q produced invalid date %q: %v", in, parsed.Date, err)
		}
	}
}

func TestParse_DateFormats(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "us slash", line: "01/15/2024", want: "2024-01-15"},
		{name: "two digit year", line: "1/15/24", want: "2024-01-15"},
		{name: "iso", line: "2024-01-15", want: "2024-01-15"},
		{name: "day first swap", line: "15/01/2024", want: "2024-01-15"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed := Parse("Store\n" + tc.line + "\nMilk 3.99")
			if parsed.Date != tc.want {
				t.Errorf("expected %q, got %q", tc.want, parsed.Date)
			}
		})
	}
}

func TestDetectItems_RejectsSummaryLines(t *testing.T) {
	raw := "Shop\nMilk 3.99\nSubTotal 3.99\nSales Tax 0.31\nTotal 4.30\nGrand TOTAL 4.30"
	parsed := Parse(raw)
	if len(parsed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(parsed.Items), parsed.Items)
	}
	if parsed.Items[0].Description != "Milk" {
		t.Errorf("unexpected item: %+v", parsed.Items[0])
	}
}

func TestDetectItems_PlausibilityBound(t *testing.T) {
	raw := "Shop\nTV 1299.99\nGum 0.99\nFree Sample 0.00"
	parsed := Parse(raw)
	if len(parsed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(parsed.Items), parsed.Items)
	}
	if parsed.Items[0].Description != "Gum" {
		t.Errorf("expected only Gum to survive bounds, got %+v", parsed.Items[0])
	}
	for _, it := range parsed.Items {
		if it.Amount <= 0 || it.Amount >= 1000 {
			t.Errorf("item amount out of (0,1000): %+v", it)
		}
	}
}

func TestDetectTotals_LargeUngroupedAmounts(t *testing.T) {
	// Amounts printed without thousands separators must be captured whole,
	// not truncated to their trailing digit group.
	raw := "BestBuy\nTV 1234.56\nSUBTOTAL 1234.56\nTAX 107.02\nTOTAL 1341.58"
	parsed := Parse(raw)

	if parsed.Totals.Subtotal != 1234.56 {
		t.Errorf("expected subtotal 1234.56, got %v", parsed.Totals.Subtotal)
	}
	if parsed.Totals.Total != 1341.58 {
		t.Errorf("expected total 1341.58, got %v", parsed.Totals.Total)
	}
	// The TV line still fails the per-item plausibility bound.
	if len(parsed.Items) != 0 {
		t.Errorf("expected no items, got %+v", parsed.Items)
	}
}

func TestDetectTotals_CommaGroupedAmounts(t *testing.T) {
	parsed := Parse("Shop\nTOTAL $1,234.56")
	if parsed.Totals.Total != 1234.56 {
		t.Errorf("expected total 1234.56, got %v", parsed.Totals.Total)
	}
}

func TestDetectItems_PreservesSourceOrder(t *testing.T) {
	raw := "Shop\nZucchini 1.10\nApples 2.20\nMilk 3.30"
	parsed := Parse(raw)
	want := []string{"Zucchini", "Apples", "Milk"}
	if len(parsed.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(parsed.Items))
	}
	for i, w := range want {
		if parsed.Items[i].Description != w {
			t.Errorf("item %d: expected %q, got %q", i, w, parsed.Items[i].Description)
		}
	}
}

func TestDetectTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "24h", raw: "Shop\n14:32", want: "14:32"},
		{name: "seconds", raw: "Shop\n14:32:07", want: "14:32:07"},
		{name: "am pm", raw: "Shop\n2:32 PM", want: "2:32 PM"},
		{name: "absent", raw: "Shop\nMilk 3.99", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Parse(tc.raw).Time; got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	a := Parse(sampleReceipt)
	b := Parse(sampleReceipt)
	if len(a.Items) != len(b.Items) || a.Totals != b.Totals || a.PaymentMethod != b.PaymentMethod {
		t.Error("expected identical results for identical input")
	}
}

func TestNormalizeLines(t *testing.T) {
	lines := NormalizeLines("  Walmart  \r\n\r\n  123   Main   St\n\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "Walmart" || lines[1] != "123 Main St" {
		t.Errorf("unexpected lines: %v", lines)
	}
}
