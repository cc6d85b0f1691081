package model

// Series is a tracked indicator identified by its BLS series code.
type Series struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
	Unit string `yaml:"unit" json:"unit"`
}

// Units understood by the dashboard formatter.
const (
	UnitThousands = "thousands"
	UnitPercent   = "percent"
)

// DefaultSeries is the set tracked when the config lists none.
var DefaultSeries = []Series{
	{Code: "CES0000000001", Name: "Total nonfarm employment", Unit: UnitThousands},
	{Code: "LNS14000000", Name: "Unemployment rate", Unit: UnitPercent},
	{Code: "LNS11300000", Name: "Labor force participation rate", Unit: UnitPercent},
	{Code: "JTS000000000000000JOL", Name: "Job openings, total nonfarm", Unit: UnitThousands},
}
