package models

import "time"

// ActivityLog represents an audit record of a mutating action
type ActivityLog struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Description string    `json:"description"`
	Payload     string    `json:"payload"`
	IPAddress   string    `json:"ipAddress"`
	RequestID   string    `json:"requestId"`
	CreatedAt   time.Time `json:"createdAt"`
}
