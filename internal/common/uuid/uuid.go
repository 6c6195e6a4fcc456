package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go github.com/KirkDiggler/mafia/internal/common/uuid UUID

type UUID interface {
	NewUUID() string
}

// DefaultUUID implements the UUID interface using the uuid package
type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new UUID
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}

// PrefixedID joins a prefix and a freshly generated id, e.g. "ai_<uuid>"
func PrefixedID(gen UUID, prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, gen.NewUUID())
}
