package folio

import "testing"

func TestMoneyArithmetic(t *testing.T) {
	a, b := M(10.5, "USD"), M(4.5, "USD")

	if got := a.Add(b); !got.Equal(M(15, "USD")) {
		t.Errorf("Add = %v, want 15 USD", got)
	}
	if got := a.Sub(b); !got.Equal(M(6, "USD")) {
		t.Errorf("Sub = %v, want 6 USD", got)
	}
	if got := a.Mul(Q(2)); !got.Equal(M(21, "USD")) {
		t.Errorf("Mul = %v, want 21 USD", got)
	}
	if got := a.Neg(); !got.Equal(M(-10.5, "USD")) {
		t.Errorf("Neg = %v, want -10.5 USD", got)
	}
	if got := M(100, "USD").MulRate(Q(0.5).Decimal(), "EUR"); !got.Equal(M(50, "EUR")) {
		t.Errorf("MulRate = %v, want 50 EUR", got)
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("adding USD and EUR did not panic")
		}
	}()
	M(1, "USD").Add(M(1, "EUR"))
}

func TestMoneyWeakCurrency(t *testing.T) {
	got := M(0, "").Add(M(5, "USD"))
	if got.Currency() != "USD" || !got.Amount().Equal(Q(5).Decimal()) {
		t.Errorf("zero-currency Add = %v, want 5 USD", got)
	}
}

func TestMoneyString(t *testing.T) {
	if got := M(1234.5, "USD").String(); got != "$1,234.50" {
		t.Errorf("String = %q, want %q", got, "$1,234.50")
	}
	if got := M(12.5, "CORP").String(); got != "12.5 CORP" {
		t.Errorf("String = %q, want %q", got, "12.5 CORP")
	}
}
