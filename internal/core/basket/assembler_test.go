package basket

import (
	"testing"

	"pantryip/internal/core/optimize"
	"pantryip/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selection(term string, src common.Source, name string, price, savings float64) optimize.Selection {
	return optimize.Selection{
		Ingredient: term,
		Product:    common.NewProduct(src, name, "", price, 1000, "", true),
		Quantity:   "1 pack",
		Savings:    savings,
	}
}

func TestAssembleTotals(t *testing.T) {
	outcome := &optimize.Outcome{
		Selections: []optimize.Selection{
			selection("chicken", common.SourceNaivas, "Chicken 1kg", 120.50, 20),
			selection("maize", common.SourceQuickmart, "Maize Flour 2kg", 35.25, 0),
			selection("tomato", common.SourceNaivas, "Tomatoes 1kg", 24.75, 5.5),
		},
	}

	b, err := Assemble(outcome, 500, common.MethodFast)
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Len(t, b.Items, 3)
	assert.InDelta(t, 180.50, b.TotalCost, 0.001)
	assert.InDelta(t, 319.50, b.BudgetRemaining, 0.001)
	assert.Equal(t, common.MethodFast, b.OptimizationMethod)

	// 各店小計加總必須等於總價
	sum := 0.0
	for _, v := range b.StoreBreakdown {
		sum += v
	}
	assert.InDelta(t, b.TotalCost, sum, 0.001)
	assert.InDelta(t, 145.25, b.StoreBreakdown[common.SourceNaivas], 0.001)
	assert.InDelta(t, 35.25, b.StoreBreakdown[common.SourceQuickmart], 0.001)
}

func TestAssembleOverBudgetIsReportedNotRejected(t *testing.T) {
	outcome := &optimize.Outcome{
		Selections: []optimize.Selection{
			selection("beef", common.SourceCarrefour, "Beef 1kg", 720, 0),
		},
	}

	b, err := Assemble(outcome, 500, common.MethodGenerative)
	require.NoError(t, err)
	assert.InDelta(t, -220, b.BudgetRemaining, 0.001)
}

func TestAssembleEmptySelectionsFails(t *testing.T) {
	_, err := Assemble(&optimize.Outcome{}, 500, common.MethodFast)
	assert.Error(t, err)

	_, err = Assemble(nil, 500, common.MethodFast)
	assert.Error(t, err)
}

func TestAssembleKeepsOptimizerTips(t *testing.T) {
	outcome := &optimize.Outcome{
		Selections: []optimize.Selection{
			selection("milk", common.SourceNaivas, "Milk 500ml", 65, 0),
		},
		Tips: []string{"Milk is cheaper in the evening markdowns."},
	}

	b, err := Assemble(outcome, 500, common.MethodGenerative)
	require.NoError(t, err)
	assert.Contains(t, b.Tips, "Milk is cheaper in the evening markdowns.")
}

func TestAssembleDefaultTipsWhenNoneSupplied(t *testing.T) {
	outcome := &optimize.Outcome{
		Selections: []optimize.Selection{
			selection("bread", common.SourceQuickmart, "Bread 400g", 60, 0),
		},
	}

	b, err := Assemble(outcome, 500, common.MethodFast)
	require.NoError(t, err)
	assert.NotEmpty(t, b.Tips)
}
