package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate_PerPersonScenario(t *testing.T) {
	item := ResolveLineItem(UnitPerPerson, 0, 500, 50)
	assert.Equal(t, int64(25000), item)

	got := Calculate(20000, []LineItem{{PackageID: "p1", Amount: item}})

	assert.Equal(t, int64(45000), got.Subtotal)
	assert.Equal(t, int64(2250), got.ServiceFee)
	assert.Equal(t, int64(47250), got.Total)
	assert.Equal(t, int64(14175), got.Deposit)
	assert.Equal(t, int64(33075), got.Balance)
}

func TestCalculate_Zero(t *testing.T) {
	got := Calculate(0, nil)
	assert.Zero(t, got.Subtotal)
	assert.Zero(t, got.ServiceFee)
	assert.Zero(t, got.Total)
	assert.Zero(t, got.Deposit)
	assert.Zero(t, got.Balance)
	assert.NotNil(t, got.Items)
}

func TestCalculate_Invariants(t *testing.T) {
	for s := int64(0); s <= 5000; s += 7 {
		got := Calculate(s, nil)
		assert.Equal(t, got.Total, got.Deposit+got.Balance, "subtotal %d", s)
		assert.Equal(t, got.Subtotal+got.ServiceFee, got.Total, "subtotal %d", s)
		assert.Equal(t, Percent(s, 5), got.ServiceFee, "subtotal %d", s)
		assert.Equal(t, Deposit(got.Total), got.Deposit, "subtotal %d", s)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	items := []LineItem{{Amount: 1234}, {Amount: 99}}
	assert.Equal(t, Calculate(15001, items), Calculate(15001, items))
}

func TestCalculate_DoesNotAliasInput(t *testing.T) {
	items := []LineItem{{Amount: 100}}
	got := Calculate(0, items)
	items[0].Amount = 999
	assert.Equal(t, int64(100), got.Items[0].Amount)
}

func TestPercent_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, int64(1), Percent(10, 5))   // 0.5
	assert.Equal(t, int64(0), Percent(9, 5))    // 0.45
	assert.Equal(t, int64(3), Percent(5, 50))   // 2.5
	assert.Equal(t, int64(-2), Percent(-5, 50)) // -2.5
}

func TestResolveLineItem(t *testing.T) {
	assert.Equal(t, int64(8000), ResolveLineItem(UnitFlatRate, 8000, 0, 120))
	assert.Equal(t, int64(3000), ResolveLineItem(UnitPerHour, 3000, 0, 10))
	assert.Equal(t, int64(0), ResolveLineItem(UnitFlatRate, 0, 250, 10))
	assert.Equal(t, int64(2500), ResolveLineItem(UnitPerPerson, 0, 250, 10))
	assert.Equal(t, int64(700), ResolveLineItem(UnitPerPerson, 700, 0, 10))
}
