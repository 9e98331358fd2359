package pricing

import "strings"

// Taxi classes derived from the vehicle brand/model lookup
const (
	TaxiTypeEconomy  = "economy"
	TaxiTypeComfort  = "comfort"
	TaxiTypeBusiness = "business"
)

// Fixed brand/model classification table. The lists mirror the training
// pipeline; entries include Cyrillic spellings seen in production data.
var (
	economyBrands = makeSet(
		"Daewoo", "Lifan", "FAW", "Great Wall", "Geely", "ЗАЗ", "Chery",
	)
	economyModels = makeSet(
		"Logan", "Symbol", "Sandero", "Lacetti", "Aveo", "Nexia", "Rio", "Spectra",
		"Granta", "Гранта", "Kalina", "Калина", "Priora", "Приора",
		"2110", "2112", "2115", "2107", "2114", "Самара", "S18",
	)

	businessBrands = makeSet("Toyota", "Honda", "Mitsubishi", "Subaru")
	businessModels = makeSet(
		"Camry", "Corolla", "RAV4", "Avensis", "Civic", "Accord",
		"Qashqai", "X-Trail", "Tiguan", "Passat CC", "Passat",
		"CX-5", "Outlander", "Kyron", "Legacy",
	)

	ladaBrands        = makeSet("LADA", "Лада", "ВАЗ (LADA)")
	ladaComfortModels = makeSet("Vesta", "Веста", "X-Ray", "Largus", "Ларгус", "GFK110")
)

// DetectTaxiType classifies a vehicle into economy/comfort/business from its
// brand and model. Unknown vehicles default to comfort.
func DetectTaxiType(carname, carmodel string) string {
	carname = strings.TrimSpace(carname)
	carmodel = strings.TrimSpace(carmodel)

	if economyBrands[carname] || economyModels[carmodel] {
		return TaxiTypeEconomy
	}
	if businessBrands[carname] || businessModels[carmodel] {
		return TaxiTypeBusiness
	}
	if ladaBrands[carname] && ladaComfortModels[carmodel] {
		return TaxiTypeComfort
	}
	return TaxiTypeComfort
}

func makeSet(items ...string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
