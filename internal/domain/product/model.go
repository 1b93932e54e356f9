package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nephrolog-lt/nephrolog-api/internal/platform/textfold"
)

type Kind string

const (
	KindUnknown Kind = "Unknown"
	KindFood    Kind = "Food"
	KindDrink   Kind = "Drink"
)

type Region string

const (
	RegionLT Region = "LT"
	RegionDE Region = "DE"
)

// Source identifies the upstream catalog a product row was imported from.
type Source string

const (
	SourceLT Source = "LT"
	SourceDN Source = "DN"
	SourceSW Source = "SW"
)

// Product is one catalog entry. All nutrient columns are per 100 g of
// product mass.
type Product struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	NameEn     string `db:"name_en" json:"name_en"`
	Synonyms   string `db:"synonyms" json:"-"`
	NameSearch string `db:"name_search" json:"-"`
	Kind       Kind   `db:"product_kind" json:"product_kind"`
	Region     Region `db:"region" json:"-"`
	Source     Source `db:"product_source" json:"-"`

	PotassiumMg     decimal.Decimal `db:"potassium_mg" json:"potassium_mg"`
	SodiumMg        decimal.Decimal `db:"sodium_mg" json:"sodium_mg"`
	PhosphorusMg    decimal.Decimal `db:"phosphorus_mg" json:"phosphorus_mg"`
	ProteinsMg      int64           `db:"proteins_mg" json:"proteins_mg"`
	EnergyKcal      int64           `db:"energy_kcal" json:"energy_kcal"`
	LiquidsG        int64           `db:"liquids_g" json:"liquids_g"`
	CarbohydratesMg int64           `db:"carbohydrates_mg" json:"carbohydrates_mg"`
	FatMg           int64           `db:"fat_mg" json:"fat_mg"`

	DensityGMl *decimal.Decimal `db:"density_g_ml" json:"density_g_ml,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// SearchKey derives the normalized key the catalog searches over: the name
// plus its synonyms, lowercased, ASCII-folded and stripped to letters,
// digits and spaces.
func SearchKey(name, synonyms string) string {
	return textfold.SearchKey(name + " " + synonyms)
}

// LiquidsMlPer100g converts the per-100 g liquid mass to volume using the
// product density, truncating the quotient. Foods carry no density and are
// treated as 1 g/ml.
func (p *Product) LiquidsMlPer100g() int64 {
	density := decimal.NewFromInt(1)
	if p.DensityGMl != nil && !p.DensityGMl.IsZero() {
		density = *p.DensityGMl
	}
	return decimal.NewFromInt(p.LiquidsG).Div(density).IntPart()
}
