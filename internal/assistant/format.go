package assistant

import (
	"fmt"
	"strings"

	"github.com/armory-market/armory-backend/internal/orders"
	"github.com/armory-market/armory-backend/pkg/db/models"
	"github.com/armory-market/armory-backend/pkg/enums"
)

// formatPrice renders an integer won amount with thousands separators.
func formatPrice(units int) string {
	negative := units < 0
	if negative {
		units = -units
	}
	digits := fmt.Sprintf("%d", units)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-₩" + b.String()
	}
	return "₩" + b.String()
}

// formatProductList renders a numbered product listing. The numbering
// matches the indexes ordinal references resolve against.
func formatProductList(products []models.Product) string {
	var b strings.Builder
	for i, p := range products {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s - %s", i+1, p.DisplayName(), formatPrice(p.PriceUnits))
	}
	return b.String()
}

// formatCatalogNames renders one localized product name per line.
func formatCatalogNames(products []models.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.DisplayName())
	}
	return strings.Join(names, "\n")
}

func statusGlyph(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusCompleted:
		return "✅"
	case enums.OrderStatusCancelled:
		return "❌"
	default:
		return "⏳"
	}
}

func statusLabel(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusCompleted:
		return "결제 완료"
	case enums.OrderStatusCancelled:
		return "주문 취소"
	default:
		return "결제 대기"
	}
}

// formatOrderHistory renders a numbered history listing, newest first,
// with date, status, line items, and total per order.
func formatOrderHistory(summaries []orders.Summary) string {
	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s %s (%s)", i+1, statusGlyph(s.Status), statusLabel(s.Status), s.CreatedAt.Format("2006-01-02"))
		for _, item := range s.Items {
			name := item.NameLocal
			if name == "" {
				name = item.Name
			}
			fmt.Fprintf(&b, "\n   - %s x%d (%s)", name, item.Quantity, formatPrice(item.Subtotal()))
		}
		fmt.Fprintf(&b, "\n   합계: %s", formatPrice(s.TotalUnits))
	}
	return b.String()
}
