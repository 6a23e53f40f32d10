// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// ConnectionInfo carries opaque client metadata captured at sign-in.
// The identity service stores and returns it but never interprets it.
type ConnectionInfo struct {
	OS       string `json:"os"`
	Browser  string `json:"browser"`
	Location string `json:"location"`
	IP       string `json:"ip"`
}

// Connection represents one logged-in device or browser session.
// Its ID doubles as the refresh-token value: presenting the ID rotates the
// session, so an ID is never reused after the connection is removed.
type Connection struct {
	ID        string         // Primary key and rotation credential (the refresh token).
	UserID    string         // Links this session to the user it belongs to.
	Info      ConnectionInfo // Client metadata, passed through untouched.
	CreatedAt time.Time      // Timestamp of when this session was created.
}

// ConnectionPage is one page of a user's connections.
type ConnectionPage struct {
	Items     []*Connection
	PageIndex int
	PageCount int
}
