package export

import (
	"context"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

// Ports for outbound export adapters.
type (
	// TransactionWriter appends one transaction to the external sheet
	// and returns an opaque row reference.
	TransactionWriter interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)
