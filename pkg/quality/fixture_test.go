package quality

import (
	"math"

	"github.com/David-Botos/plant-clean/pkg/model"
)

var plantColumns = []string{
	"respondent_id", "report_year", "plant_name", "yr_constructed", "kind_of_fuel", "capacity_rating",
}

// plantTable mixes plant rows with heading rows, as the source table does
func plantTable() *model.Table {
	tbl := model.NewTable("f1_gnrt_plant", plantColumns)
	tbl.Append(model.Row{"respondent_id": int64(1), "report_year": int64(2015), "plant_name": "Plant A",
		"yr_constructed": "1985", "kind_of_fuel": "Coal/Gas", "capacity_rating": 12.5})
	tbl.Append(model.Row{"respondent_id": int64(1), "report_year": int64(2015), "plant_name": "Total",
		"yr_constructed": "", "kind_of_fuel": "", "capacity_rating": nil})
	tbl.Append(model.Row{"respondent_id": int64(2), "report_year": int64(2015), "plant_name": "none",
		"yr_constructed": "19xx", "kind_of_fuel": "#2 Oil", "capacity_rating": math.NaN()})
	tbl.Append(model.Row{"respondent_id": int64(2), "report_year": int64(2015), "plant_name": "Plant B",
		"yr_constructed": "2001", "kind_of_fuel": "n/a", "capacity_rating": 3.0})
	tbl.Append(model.Row{"respondent_id": int64(3), "report_year": int64(2015), "plant_name": " ",
		"yr_constructed": nil, "kind_of_fuel": "xyz", "capacity_rating": 4.0})
	return tbl
}
