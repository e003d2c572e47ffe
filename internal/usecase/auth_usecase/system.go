package auth

import (
	"time"

	"github.com/google/uuid"
)

type UUIDGenerator struct{}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

type RealClock struct{}

func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
