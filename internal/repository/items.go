package repository

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/soukmarket/souk-api/internal/domain/cart"
	"github.com/soukmarket/souk-api/internal/domain/order"
)

// Line items live in JSONB columns (one document per cart/order). Prices
// are encoded as strings to keep decimal exactness across the round trip.

func encodeCartItems(items []cart.Item) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("price")
		e.Str(it.Price.String())
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeCartItems(data []byte) ([]cart.Item, error) {
	var items []cart.Item
	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		var it cart.Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "product_id":
				it.ProductID, err = d.Str()
			case "quantity":
				it.Quantity, err = d.Int()
			case "price":
				var s string
				if s, err = d.Str(); err == nil {
					it.Price, err = decimal.NewFromString(s)
				}
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	return items, err
}

func encodeOrderItems(items []order.Item) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		e.FieldStart("title")
		e.Str(it.Title)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("price")
		e.Str(it.Price.String())
		e.FieldStart("seller_id")
		e.Str(it.SellerID)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeOrderItems(data []byte) ([]order.Item, error) {
	var items []order.Item
	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		var it order.Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "product_id":
				it.ProductID, err = d.Str()
			case "title":
				it.Title, err = d.Str()
			case "quantity":
				it.Quantity, err = d.Int()
			case "price":
				var s string
				if s, err = d.Str(); err == nil {
					it.Price, err = decimal.NewFromString(s)
				}
			case "seller_id":
				it.SellerID, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	return items, err
}
