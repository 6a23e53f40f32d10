// Package model contains the GORM table mappings for the relational store.
package model

import (
	"time"
)

// LinkModel mirrors the 'links' table. The alias carries the uniqueness
// constraint that backs the mint-and-retry loop.
type LinkModel struct {
	ID        uint64 `gorm:"primary_key;autoIncrement"`
	Alias     string `gorm:"type:varchar(64);unique;not null"`
	URL       string `gorm:"type:text;not null"`
	CreatedBy string `gorm:"type:varchar(64);index"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (LinkModel) TableName() string {
	return "links"
}
