package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// AssetTransfer is the port for moving a positive amount of asset between
// accounts. Failures wrap entity.ErrTransferFailed.
type AssetTransfer interface {
	Transfer(ctx context.Context, asset, from, to string, amount decimal.Decimal) error
}
