package repositories

import (
	"errors"
	"fmt"

	"github.com/anonto42/reelnote/backend/internal/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// notFound maps driver-specific "no such document" errors onto notify.ErrNotFound
// and leaves other errors wrapped as they are.
func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, mongo.ErrNoDocuments),
		status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s: %w", what, notify.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
