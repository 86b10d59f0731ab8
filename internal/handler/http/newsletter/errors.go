package newsletter

import (
	"fmt"

	"dispatch/internal/domain/entity"
)

var errUnauthenticated = fmt.Errorf("mine requires a signed-in user: %w", entity.ErrUnauthorized)
