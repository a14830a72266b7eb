package receipt

import (
	"fmt"
	"strings"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

const (
	receiptTitle  = "E - RECEIPT"
	receiptFooter = "Thank you for your purchase! This is an auto-generated receipt."
	dateLayout    = "2006-01-02 15:04"
	ruleWidth     = 48
)

// FormatText renders a receipt as plain text, one row per bill line.
func FormatText(r domain.ReceiptRecord) string {
	var b strings.Builder
	rule := strings.Repeat("-", ruleWidth)

	fmt.Fprintln(&b, receiptTitle)
	fmt.Fprintf(&b, "Date: %s\n", r.Timestamp.Format(dateLayout))
	fmt.Fprintln(&b, rule)
	for _, it := range r.Items {
		fmt.Fprintf(&b, "%-28s %-6s %s\n", it.Name, fmt.Sprintf("x%d", it.Quantity), "Rs."+it.Subtotal().StringFixed(2))
	}
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "TOTAL: Rs.%s\n", r.Total.StringFixed(2))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, receiptFooter)
	return b.String()
}
