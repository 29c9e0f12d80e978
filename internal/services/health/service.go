package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Database states reported by Status.
const (
	DatabaseUp       = "up"
	DatabaseDown     = "down"
	DatabaseDisabled = "disabled"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the /health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB Pinger
}

// NewService constructs a new health service. db may be nil when the process
// runs on in-memory repositories.
func NewService(db Pinger) *Service {
	return &Service{DB: db}
}

// Status pings the database. ok stays true while the database is down.
func (s *Service) Status(ctx context.Context) Status {
	if s.DB == nil {
		return Status{OK: true, Database: DatabaseDisabled}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return Status{OK: true, Database: DatabaseDown}
	}
	return Status{OK: true, Database: DatabaseUp}
}
