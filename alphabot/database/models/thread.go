package models

import (
	"encoding/json"
	"time"
)

// IDList is a list of plain user IDs. Legacy exports wrap entries as
// {"id": "..."} objects; unmarshalling normalizes both shapes to bare IDs so
// the rest of the bot never sees wrapper objects.
type IDList []string

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		var id string
		if err := json.Unmarshal(entry, &id); err == nil {
			ids = append(ids, id)
			continue
		}
		var wrapped struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(entry, &wrapped); err != nil {
			return err
		}
		if wrapped.ID != "" {
			ids = append(ids, wrapped.ID)
		}
	}
	*l = ids
	return nil
}

// Contains reports whether id is in the list.
func (l IDList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Thread is the persisted per-conversation record.
type Thread struct {
	ThreadID    string              `json:"threadID" bson:"threadID"`
	Name        string              `json:"name,omitempty" bson:"name,omitempty"`
	Prefix      string              `json:"prefix,omitempty" bson:"prefix,omitempty"`
	AdminIDs    IDList              `json:"adminIDs" bson:"adminIDs"`
	Permissions map[string][]string `json:"permissions,omitempty" bson:"permissions,omitempty"`
	NSFW        bool                `json:"nsfw" bson:"nsfw"`
	Banned      bool                `json:"banned" bson:"banned"`
	BanReason   string              `json:"banReason,omitempty" bson:"banReason,omitempty"`
	Language    string              `json:"language,omitempty" bson:"language,omitempty"`
	IsGroup     bool                `json:"isGroup" bson:"isGroup"`
	MemberCount int                 `json:"memberCount,omitempty" bson:"memberCount,omitempty"`
	Data        map[string]any      `json:"data,omitempty" bson:"data,omitempty"`
	LastUpdate  time.Time           `json:"lastUpdate" bson:"lastUpdate"`
}

func NewThread(threadID string) *Thread {
	return &Thread{
		ThreadID:   threadID,
		LastUpdate: time.Now(),
	}
}

// Clone returns a copy that shares no maps or slices with the receiver, so a
// mutation of the copy can never leak into a cached record.
func (t *Thread) Clone() *Thread {
	cp := *t
	if t.AdminIDs != nil {
		cp.AdminIDs = make(IDList, len(t.AdminIDs))
		copy(cp.AdminIDs, t.AdminIDs)
	}
	if t.Permissions != nil {
		cp.Permissions = make(map[string][]string, len(t.Permissions))
		for k, v := range t.Permissions {
			tags := make([]string, len(v))
			copy(tags, v)
			cp.Permissions[k] = tags
		}
	}
	if t.Data != nil {
		cp.Data = make(map[string]any, len(t.Data))
		for k, v := range t.Data {
			cp.Data[k] = v
		}
	}
	return &cp
}
