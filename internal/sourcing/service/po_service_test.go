package service

import (
	"testing"

	"github.com/bitfantasy/nimo-sourcing/internal/sourcing/entity"
)

func TestComputePOTotals(t *testing.T) {
	items := []entity.POItem{
		{Quantity: 2, UnitPrice: 100, GSTPercent: 18},
	}
	totals := ComputePOTotals(items)

	if totals.Subtotal != 200.00 {
		t.Errorf("subtotal: expected 200.00, got %v", totals.Subtotal)
	}
	if totals.TaxTotal != 36.00 {
		t.Errorf("tax: expected 36.00, got %v", totals.TaxTotal)
	}
	if totals.GrandTotal != 236 {
		t.Errorf("grand total: expected 236, got %v", totals.GrandTotal)
	}
	if items[0].LineTotal != 200.00 {
		t.Errorf("line total not written back, got %v", items[0].LineTotal)
	}
}

func TestComputePOTotalsRounding(t *testing.T) {
	// 0.1*3 之类的浮点误差不能漏进金额
	items := []entity.POItem{
		{Quantity: 3, UnitPrice: 33.335, GSTPercent: 5},
		{Quantity: 1, UnitPrice: 0.1, GSTPercent: 0},
	}
	totals := ComputePOTotals(items)

	if totals.Subtotal != 100.11 {
		t.Errorf("subtotal: expected 100.11, got %v", totals.Subtotal)
	}
	if totals.TaxTotal != 5.00 {
		t.Errorf("tax: expected 5.00, got %v", totals.TaxTotal)
	}
	// 100.11 + 5.00 = 105.11 → 取整 105
	if totals.GrandTotal != 105 {
		t.Errorf("grand total: expected 105, got %v", totals.GrandTotal)
	}
}

func TestComputePOTotalsEmpty(t *testing.T) {
	totals := ComputePOTotals(nil)
	if totals.Subtotal != 0 || totals.TaxTotal != 0 || totals.GrandTotal != 0 {
		t.Errorf("empty items should yield zero totals: %+v", totals)
	}
}

func TestNeedsApproval(t *testing.T) {
	const threshold = 100000

	cases := []struct {
		name        string
		grandTotal  float64
		priorOrders int64
		want        bool
	}{
		{"below threshold, known vendor", 50000, 3, false},
		{"above threshold", 100001, 3, true},
		{"exactly at threshold", 100000, 3, false},
		{"new vendor, small amount", 100, 0, true},
		{"new vendor, large amount", 200000, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NeedsApproval(tc.grandTotal, threshold, tc.priorOrders); got != tc.want {
				t.Errorf("NeedsApproval(%v, %v, %v) = %v, want %v",
					tc.grandTotal, threshold, tc.priorOrders, got, tc.want)
			}
		})
	}
}
