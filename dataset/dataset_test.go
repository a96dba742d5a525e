package dataset

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/go-promoforecast/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const salesCSV = `ItemNumber,DateKey,UnitSales,IsPromo,ShelfCapacity,Weather
100,20170103,5,0,10,sunny
100,20170101,3,1,10,rain
200,20170101,7,True,,sunny
100,20170102,,0,10,sunny
200,20170102,8,False,12,rain
`

func TestLoadCSV(t *testing.T) {
	frames, err := LoadCSV(strings.NewReader(salesCSV), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "200"}, Items(frames))

	f := frames["100"]
	require.Equal(t, 3, f.Len())
	assert.Equal(t, []string{"DateKey", "UnitSales", "IsPromo", "ShelfCapacity", "Weather"}, f.Columns())

	dates, exists := f.Times("DateKey")
	require.True(t, exists)
	assert.Equal(t, time.Date(2017, 1, 3, 0, 0, 0, 0, time.UTC), dates[0])

	sales, exists := f.Floats("UnitSales")
	require.True(t, exists)
	assert.Equal(t, 5.0, sales[0])
	assert.True(t, math.IsNaN(sales[2]))

	promo, exists := f.Bools("IsPromo")
	require.True(t, exists)
	assert.Equal(t, []bool{false, true, false}, promo)

	kind, exists := f.Kind("Weather")
	require.True(t, exists)
	assert.Equal(t, series.KindString, kind)

	promo, exists = frames["200"].Bools("IsPromo")
	require.True(t, exists)
	assert.Equal(t, []bool{true, false}, promo)

	s, err := series.Prepare(f, series.DefaultSchema("100"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []float64{3, 5}, s.Targets())
}

func TestLoadCSVErrors(t *testing.T) {
	testData := map[string]struct {
		input string
		err   error
	}{
		"empty": {
			input: "",
			err:   ErrNoHeader,
		},
		"no item column": {
			input: "DateKey,UnitSales\n20170101,1\n",
			err:   ErrMissingColumn,
		},
		"no date column": {
			input: "ItemNumber,UnitSales\n1,1\n",
			err:   ErrMissingColumn,
		},
		"bad promo flag": {
			input: "ItemNumber,DateKey,IsPromo\n1,20170101,maybe\n",
			err:   ErrInvalidBool,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(td.input), nil)
			assert.ErrorIs(t, err, td.err)
		})
	}

	_, err := LoadCSV(strings.NewReader("ItemNumber,DateKey\n1,2017-01-01\n"), nil)
	assert.Error(t, err)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")

	f := excelize.NewFile()
	sheet := "Sales"
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	rows := [][]any{
		{"ItemNumber", "DateKey", "UnitSales", "IsPromo", "ShelfCapacity"},
		{100, 20170101, 4, 1, 10},
		{100, 20170102, 6, 0, 10},
		{300, 20170101, 1, 0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	frames, err := LoadXLSX(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "300"}, Items(frames))

	sales, exists := frames["100"].Floats("UnitSales")
	require.True(t, exists)
	assert.Equal(t, []float64{4, 6}, sales)

	capacity, exists := frames["300"].Floats("ShelfCapacity")
	require.True(t, exists)
	assert.True(t, math.IsNaN(capacity[0]))

	opt := NewDefaultOptions()
	opt.Sheet = "Missing"
	_, err = LoadXLSX(path, opt)
	assert.ErrorIs(t, err, ErrNoSheet)
}
