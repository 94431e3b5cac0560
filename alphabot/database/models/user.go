package models

import "time"

// User is the persisted per-account record.
type User struct {
	UserID      string         `json:"userID" bson:"userID"`
	Name        string         `json:"name,omitempty" bson:"name,omitempty"`
	Permissions []string       `json:"permissions,omitempty" bson:"permissions,omitempty"`
	Banned      bool           `json:"banned" bson:"banned"`
	BanReason   string         `json:"banReason,omitempty" bson:"banReason,omitempty"`
	Language    string         `json:"language,omitempty" bson:"language,omitempty"`
	Money       int64          `json:"money" bson:"money"`
	Exp         int64          `json:"exp" bson:"exp"`
	Data        map[string]any `json:"data,omitempty" bson:"data,omitempty"`
	LastUpdate  time.Time      `json:"lastUpdate" bson:"lastUpdate"`
}

func NewUser(userID string) *User {
	return &User{
		UserID:     userID,
		LastUpdate: time.Now(),
	}
}

// Clone returns a copy that shares no maps or slices with the receiver.
func (u *User) Clone() *User {
	cp := *u
	if u.Permissions != nil {
		cp.Permissions = make([]string, len(u.Permissions))
		copy(cp.Permissions, u.Permissions)
	}
	if u.Data != nil {
		cp.Data = make(map[string]any, len(u.Data))
		for k, v := range u.Data {
			cp.Data[k] = v
		}
	}
	return &cp
}
