package port

import (
	"context"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

type ReceiptExporter interface {
	// Name identifies the exporter in logs and command results
	Name() string

	// Export hands a confirmed receipt to an external collaborator and returns
	// where it went (a file path, an exchange/routing key, ...)
	Export(ctx context.Context, receipt domain.ReceiptRecord) (string, error)
}
