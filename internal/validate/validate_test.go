package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
)

type line struct {
	ProductInfo int64 `json:"product_info" validate:"required,gt=0"`
	Quantity    int   `json:"quantity" validate:"gte=1"`
}

type order struct {
	Items []line `json:"ordered_items" validate:"required,min=1,dive"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	cases := []struct {
		name string
		in   order
		want string
	}{
		{"missing", order{}, "ordered_items: is required"},
		{"empty", order{Items: []line{}}, "ordered_items: must have at least 1 entries"},
		{"nested", order{Items: []line{{ProductInfo: 3, Quantity: 0}}}, "ordered_items[0].quantity: must be >= 1"},
		{"nested id", order{Items: []line{{Quantity: 1}}}, "ordered_items[0].product_info: is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.in)
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Equal(t, tc.want, err.Error())
		})
	}

	assert.NoError(t, Struct(order{Items: []line{{ProductInfo: 1, Quantity: 2}}}))
}

func TestStruct_Feed(t *testing.T) {
	feed := domain.Feed{
		Shop:       "Связной",
		Categories: []domain.FeedCategory{{ID: 224, Name: "Смартфоны"}},
		Goods: []domain.FeedGood{{
			ID: 1, Category: 224, Name: "Phone",
			Price: decimal.NewNullDecimal(decimal.NewFromInt(10)), PriceRRC: decimal.NewNullDecimal(decimal.NewFromInt(12)), Quantity: ptr(1),
			Parameters: map[string]domain.ParamValue{"Цвет": "золотистый"},
		}},
	}
	require.NoError(t, Struct(feed))

	feed.Shop = ""
	err := Struct(feed)
	require.Error(t, err)
	assert.Equal(t, "shop: is required", err.Error())

	feed.Shop = "x"
	feed.Goods[0].Quantity = ptr(-1)
	err = Struct(feed)
	require.Error(t, err)
	assert.Equal(t, "goods[0].quantity: must be >= 0", err.Error())

	feed.Goods[0].Quantity = nil
	err = Struct(feed)
	require.Error(t, err)
	assert.Equal(t, "goods[0].quantity: is required", err.Error())
}

func TestVar_URL(t *testing.T) {
	assert.NoError(t, Var("url", "https://example.com/shop.yaml", "required,http_url"))

	err := Var("url", "ftp://example.com/x", "required,http_url")
	require.Error(t, err)
	assert.Equal(t, "url: must be an http(s) URL", err.Error())

	err = Var("url", "", "required,http_url")
	require.Error(t, err)
	assert.Equal(t, "url: is required", err.Error())
}

func ptr[T any](v T) *T { return &v }
