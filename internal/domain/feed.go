package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Feed is the partner catalog document ingested by the importer.
type Feed struct {
	Shop       string         `yaml:"shop" json:"shop" validate:"required,max=100"`
	Categories []FeedCategory `yaml:"categories" json:"categories" validate:"required,min=1,dive"`
	Goods      []FeedGood     `yaml:"goods" json:"goods" validate:"dive"`
}

type FeedCategory struct {
	ID   int64  `yaml:"id" json:"id" validate:"required,gt=0"`
	Name string `yaml:"name" json:"name" validate:"required,max=100"`
}

type FeedGood struct {
	ID         int64                 `yaml:"id" json:"id" validate:"required,gt=0"`
	Category   int64                 `yaml:"category" json:"category" validate:"required,gt=0"`
	Model      string                `yaml:"model" json:"model" validate:"max=200"`
	Name       string                `yaml:"name" json:"name" validate:"required,max=200"`
	Price      decimal.NullDecimal   `yaml:"price" json:"price"`
	PriceRRC   decimal.NullDecimal   `yaml:"price_rrc" json:"price_rrc"`
	Quantity   *int                  `yaml:"quantity" json:"quantity" validate:"required,gte=0"`
	Parameters map[string]ParamValue `yaml:"parameters" json:"parameters" validate:"dive,keys,required,max=100,endkeys"`
}

// ParamValue keeps the literal text of a scalar so numeric attribute values
// ("Диагональ (дюйм)": 6.5) survive decoding unchanged.
type ParamValue string

func (v *ParamValue) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: parameter value must be a scalar", n.Line)
	}
	*v = ParamValue(n.Value)
	return nil
}

// Check enforces the cross-field rules a struct validator cannot express.
func (f *Feed) Check() error {
	cats := make(map[int64]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		if _, dup := cats[c.ID]; dup {
			return Validation(fmt.Sprintf("categories: duplicate id %d", c.ID))
		}
		cats[c.ID] = struct{}{}
	}
	goods := make(map[int64]struct{}, len(f.Goods))
	for i, g := range f.Goods {
		if _, dup := goods[g.ID]; dup {
			return Validation(fmt.Sprintf("goods[%d]: duplicate id %d", i, g.ID))
		}
		goods[g.ID] = struct{}{}
		if _, ok := cats[g.Category]; !ok {
			return Validation(fmt.Sprintf("goods[%d]: category %d is not declared", i, g.Category))
		}
		if !g.Price.Valid {
			return Validation(fmt.Sprintf("goods[%d].price: is required", i))
		}
		if !g.PriceRRC.Valid {
			return Validation(fmt.Sprintf("goods[%d].price_rrc: is required", i))
		}
		if g.Price.Decimal.IsNegative() || g.PriceRRC.Decimal.IsNegative() {
			return Validation(fmt.Sprintf("goods[%d]: price must not be negative", i))
		}
	}
	return nil
}

// Stock is the listed quantity, zero when the document left it out.
func (g FeedGood) Stock() int {
	if g.Quantity == nil {
		return 0
	}
	return *g.Quantity
}

// ImportResult summarizes a completed catalog import.
type ImportResult struct {
	ShopID     int64 `json:"shop_id"`
	Categories int   `json:"categories"`
	Goods      int   `json:"goods"`
}
