package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductType 商品种类，封闭集合：car / sparepart
type ProductType uint8

const (
	TypeCar ProductType = iota + 1
	TypeSparePart
)

var ErrInvalidProductType = errors.New("invalid product type")

// ParseProductType 只接受 "car" 与 "sparepart"
func ParseProductType(s string) (ProductType, error) {
	switch s {
	case "car":
		return TypeCar, nil
	case "sparepart":
		return TypeSparePart, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidProductType, s)
}

func (t ProductType) String() string {
	switch t {
	case TypeCar:
		return "car"
	case TypeSparePart:
		return "sparepart"
	}
	return fmt.Sprintf("ProductType(%d)", uint8(t))
}

func (t ProductType) Valid() bool {
	return t == TypeCar || t == TypeSparePart
}

func (t ProductType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrInvalidProductType
	}
	return json.Marshal(t.String())
}

func (t *ProductType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseProductType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Product 购物车与订单可引用的商品：*Car 或 *SparePart
type Product interface {
	Kind() ProductType
	ProductID() int64
	DisplayName() string
	UnitPrice() decimal.Decimal
	OwnerID() int64
}
