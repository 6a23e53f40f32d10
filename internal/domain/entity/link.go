package entity

import "time"

// Link maps a minted short alias to its original URL.
type Link struct {
	ID        uint64
	Alias     string // Random short alias, unique across all links.
	URL       string // The original long URL.
	CreatedBy string // User that requested the link, empty for anonymous.
	CreatedAt time.Time
}
