package store

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophpos/internal/common"
)

var (
	ErrUnknownIndex  = errors.New("unknown index")
	ErrScopeRequired = errors.New("scope filter required")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorageUnavailable, err)
}
