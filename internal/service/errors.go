package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/example/carmarket/internal/datamodels/catalog"
)

var (
	ErrInvalidProductType = catalog.ErrInvalidProductType
	ErrProductNotFound    = errors.New("product not found")
	ErrValidation         = errors.New("validation failed")
	ErrEmptyOrder         = errors.New("no cart item could be ordered")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("forbidden")
)

// notFound 把 gorm 的未找到转换为 target，其余错误原样返回
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
