package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/doclint/internal/docmodel"
)

func TestCalculate(t *testing.T) {
	reg := docmodel.NewRegistry([]docmodel.Entity{
		{Path: "A", Kind: docmodel.KindClass, File: "a.rb", Line: 1, Docstring: "A class."},
		{Path: "A#x", Kind: docmodel.KindMethod, File: "a.rb", Line: 2},
		{Path: "A#y", Kind: docmodel.KindMethod, File: "a.rb", Line: 3, Tags: []docmodel.Tag{{TagName: "return"}}},
		{Path: "A#z", Kind: docmodel.KindMethod, File: "a.rb", Line: 4, Visibility: docmodel.VisibilityPrivate},
		{Path: "B", Kind: docmodel.KindClass, File: "b.rb", Line: 1},
	})

	res, err := Calculator{Objects: reg}.Calculate([]string{"a.rb"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Documented)
	assert.InDelta(t, 66.67, res.Coverage, 0.001)

	res, err = Calculator{Objects: reg, Visibility: docmodel.VisibilityAll}.Calculate(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)

	res, err = Calculator{Objects: reg}.Calculate([]string{"none.rb"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Coverage)
}
