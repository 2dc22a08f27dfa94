package domain

import "time"

// Department represents a hospital department that publishes slots
type Department struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
