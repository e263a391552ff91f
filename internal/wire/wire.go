// Package wire holds the JSON representation shared by the API server, its
// HTTP client and the local recently-viewed store.
//
// Successful responses are wrapped as {"message": "...", "data": <payload>}.
// Products use the storefront field names (_id, title, price, discount,
// thumbnail, images, category, isFavorite). The category field is written as
// {"_id", "name"} when the name is known and as a bare id otherwise; both
// forms are accepted on input.
package wire

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/steezy-shop/internal/domain/category"
	"github.com/xenking/steezy-shop/internal/domain/product"
)

// Envelope encodes a success body. data may be nil for message-only bodies.
func Envelope(message string, data func(e *jx.Encoder)) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("message")
	e.Str(message)
	if data != nil {
		e.FieldStart("data")
		data(&e)
	}
	e.ObjEnd()
	return e.Bytes()
}

// DecodeData locates the "data" member of an envelope and hands the decoder,
// positioned at its value, to fn. A missing or null data member is an error.
func DecodeData(b []byte, fn func(d *jx.Decoder) error) error {
	found := false
	err := jx.DecodeBytes(b).Obj(func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		if d.Next() == jx.Null {
			return d.Null()
		}
		found = true
		return fn(d)
	})
	if err != nil {
		return errors.Wrap(err, "decode envelope")
	}
	if !found {
		return errors.New("decode envelope: no data")
	}
	return nil
}

// Error is the body of every non-2xx API response.
type Error struct {
	Code    int
	Message string
	Fields  map[string]string
}

// EncodeError renders an error body.
func EncodeError(v Error) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(v.Code)
	e.FieldStart("message")
	e.Str(v.Message)
	if len(v.Fields) > 0 {
		e.FieldStart("fields")
		e.ObjStart()
		for k, msg := range v.Fields {
			e.FieldStart(k)
			e.Str(msg)
		}
		e.ObjEnd()
	}
	e.ObjEnd()
	return e.Bytes()
}

// DecodeError parses an error body.
func DecodeError(b []byte) (Error, error) {
	var v Error
	err := jx.DecodeBytes(b).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			v.Code, err = d.Int()
		case "message":
			v.Message, err = d.Str()
		case "fields":
			v.Fields = map[string]string{}
			err = d.Obj(func(d *jx.Decoder, field string) error {
				msg, err := d.Str()
				v.Fields[field] = msg
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return Error{}, errors.Wrap(err, "decode error body")
	}
	return v, nil
}

// EncodeItem writes a single product object.
func EncodeItem(e *jx.Encoder, it product.Item) {
	e.ObjStart()
	e.FieldStart("_id")
	e.Str(it.ID)
	e.FieldStart("title")
	e.Str(it.Title)
	e.FieldStart("price")
	encodeDecimal(e, it.Price)
	e.FieldStart("discount")
	encodeDecimal(e, it.DiscountPrice)
	if it.Description != "" {
		e.FieldStart("description")
		e.Str(it.Description)
	}
	e.FieldStart("stock")
	e.Int(it.Stock)
	if it.ThumbnailURL != "" {
		e.FieldStart("thumbnail")
		e.Str(it.ThumbnailURL)
	}
	e.FieldStart("images")
	e.ArrStart()
	for _, u := range it.ImageURLs {
		e.Str(u)
	}
	e.ArrEnd()
	e.FieldStart("category")
	if it.CategoryName != "" {
		e.ObjStart()
		e.FieldStart("_id")
		e.Str(it.CategoryID)
		e.FieldStart("name")
		e.Str(it.CategoryName)
		e.ObjEnd()
	} else {
		e.Str(it.CategoryID)
	}
	e.FieldStart("isFavorite")
	e.Bool(it.IsFavorite)
	encodeTime(e, "createdAt", it.CreatedAt)
	encodeTime(e, "updatedAt", it.UpdatedAt)
	e.ObjEnd()
}

// EncodeItems writes a product array.
func EncodeItems(e *jx.Encoder, items []product.Item) {
	e.ArrStart()
	for _, it := range items {
		EncodeItem(e, it)
	}
	e.ArrEnd()
}

// DecodeItem reads a single product object. Unknown members are skipped.
func DecodeItem(d *jx.Decoder) (product.Item, error) {
	var it product.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "_id":
			it.ID, err = d.Str()
		case "title":
			it.Title, err = d.Str()
		case "price":
			it.Price, err = decodeDecimal(d)
		case "discount":
			it.DiscountPrice, err = decodeDecimal(d)
		case "description":
			it.Description, err = decodeOptStr(d)
		case "stock":
			it.Stock, err = d.Int()
		case "thumbnail":
			it.ThumbnailURL, err = decodeOptStr(d)
		case "images":
			it.ImageURLs, err = decodeStrings(d)
		case "category":
			it.CategoryID, it.CategoryName, err = decodeCategoryRef(d)
		case "isFavorite":
			it.IsFavorite, err = d.Bool()
		case "createdAt":
			it.CreatedAt, err = decodeTime(d)
		case "updatedAt":
			it.UpdatedAt, err = decodeTime(d)
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "field %q", key)
	})
	if err != nil {
		return product.Item{}, errors.Wrap(err, "decode product")
	}
	if it.ImageURLs == nil {
		it.ImageURLs = []string{}
	}
	return it, nil
}

// DecodeItems reads a product array.
func DecodeItems(d *jx.Decoder) ([]product.Item, error) {
	items := []product.Item{}
	err := d.Arr(func(d *jx.Decoder) error {
		it, err := DecodeItem(d)
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// MarshalItems renders a bare product array.
func MarshalItems(items []product.Item) []byte {
	var e jx.Encoder
	EncodeItems(&e, items)
	return e.Bytes()
}

// UnmarshalItems parses a bare product array.
func UnmarshalItems(b []byte) ([]product.Item, error) {
	return DecodeItems(jx.DecodeBytes(b))
}

// EncodePatch writes only the fields the patch sets. The category is always
// sent as a bare id.
func EncodePatch(e *jx.Encoder, p product.Patch) {
	e.ObjStart()
	if p.Title != nil {
		e.FieldStart("title")
		e.Str(*p.Title)
	}
	if p.Price != nil {
		e.FieldStart("price")
		encodeDecimal(e, *p.Price)
	}
	if p.DiscountPrice != nil {
		e.FieldStart("discount")
		encodeDecimal(e, *p.DiscountPrice)
	}
	if p.Description != nil {
		e.FieldStart("description")
		e.Str(*p.Description)
	}
	if p.Stock != nil {
		e.FieldStart("stock")
		e.Int(*p.Stock)
	}
	if p.ThumbnailURL != nil {
		e.FieldStart("thumbnail")
		e.Str(*p.ThumbnailURL)
	}
	if p.ImageURLs != nil {
		e.FieldStart("images")
		e.ArrStart()
		for _, u := range *p.ImageURLs {
			e.Str(u)
		}
		e.ArrEnd()
	}
	if p.CategoryID != nil {
		e.FieldStart("category")
		e.Str(*p.CategoryID)
	}
	if p.IsFavorite != nil {
		e.FieldStart("isFavorite")
		e.Bool(*p.IsFavorite)
	}
	e.ObjEnd()
}

// DecodePatch reads a partial product. Members that are absent stay nil;
// identity and timestamp members are ignored.
func DecodePatch(d *jx.Decoder) (product.Patch, error) {
	var p product.Patch
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "title":
			v, err := d.Str()
			p.Title = &v
			return err
		case "price":
			v, err := decodeDecimal(d)
			p.Price = &v
			return err
		case "discount":
			v, err := decodeDecimal(d)
			p.DiscountPrice = &v
			return err
		case "description":
			v, err := decodeOptStr(d)
			p.Description = &v
			return err
		case "stock":
			v, err := d.Int()
			p.Stock = &v
			return err
		case "thumbnail":
			v, err := decodeOptStr(d)
			p.ThumbnailURL = &v
			return err
		case "images":
			v, err := decodeStrings(d)
			if v == nil {
				v = []string{}
			}
			p.ImageURLs = &v
			return err
		case "category":
			id, _, err := decodeCategoryRef(d)
			p.CategoryID = &id
			return err
		case "isFavorite":
			v, err := d.Bool()
			p.IsFavorite = &v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return product.Patch{}, errors.Wrap(err, "decode product patch")
	}
	return p, nil
}

// EncodeCategory writes a single category object.
func EncodeCategory(e *jx.Encoder, c category.Category) {
	e.ObjStart()
	e.FieldStart("_id")
	e.Str(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	encodeTime(e, "createdAt", c.CreatedAt)
	encodeTime(e, "updatedAt", c.UpdatedAt)
	e.ObjEnd()
}

// EncodeCategories writes a category array.
func EncodeCategories(e *jx.Encoder, cs []category.Category) {
	e.ArrStart()
	for _, c := range cs {
		EncodeCategory(e, c)
	}
	e.ArrEnd()
}

// DecodeCategory reads a single category object.
func DecodeCategory(d *jx.Decoder) (category.Category, error) {
	var c category.Category
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "_id":
			c.ID, err = d.Str()
		case "name":
			c.Name, err = d.Str()
		case "createdAt":
			c.CreatedAt, err = decodeTime(d)
		case "updatedAt":
			c.UpdatedAt, err = decodeTime(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return category.Category{}, errors.Wrap(err, "decode category")
	}
	return c, nil
}

// DecodeCategories reads a category array.
func DecodeCategories(d *jx.Decoder) ([]category.Category, error) {
	cs := []category.Category{}
	err := d.Arr(func(d *jx.Decoder) error {
		c, err := DecodeCategory(d)
		if err != nil {
			return err
		}
		cs = append(cs, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// decodeCategoryRef accepts a bare id, a populated {"_id","name"} object, or null.
func decodeCategoryRef(d *jx.Decoder) (id, name string, err error) {
	switch d.Next() {
	case jx.Null:
		return "", "", d.Null()
	case jx.String:
		id, err = d.Str()
		return id, "", err
	case jx.Object:
		err = d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "_id":
				id, err = d.Str()
			case "name":
				name, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		})
		return id, name, err
	default:
		return "", "", errors.Errorf("unexpected %s for category", d.Next())
	}
}

// decodeDecimal accepts a JSON number or a numeric string.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(string(n))
	}
}

// encodeDecimal writes v as a JSON number with its exact digits.
func encodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

func decodeOptStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func decodeStrings(d *jx.Decoder) ([]string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	out := []string{}
	err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		out = append(out, s)
		return err
	})
	return out, err
}

func encodeTime(e *jx.Encoder, field string, t time.Time) {
	if t.IsZero() {
		return
	}
	e.FieldStart(field)
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func decodeTime(d *jx.Decoder) (time.Time, error) {
	s, err := decodeOptStr(d)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}
