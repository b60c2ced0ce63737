package models

import "time"

// Fact represents a single persisted statement about a user, with its
// provenance metadata. MemoryID is assigned by the local store on the first
// successful insert and never changes afterwards.
type Fact struct {
	MemoryID    string    `bson:"memory_id" json:"memory_id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Content     string    `bson:"content" json:"content"`
	Topics      []string  `bson:"topics,omitempty" json:"topics,omitempty"`
	Confidence  float64   `bson:"confidence" json:"confidence"`
	IsProxy     bool      `bson:"is_proxy" json:"is_proxy"`
	ProxyAgent  string    `bson:"proxy_agent,omitempty" json:"proxy_agent,omitempty"`
	LastUpdated time.Time `bson:"last_updated" json:"last_updated"`
}
