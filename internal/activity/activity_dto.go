package activity

import "encoding/json"

type ListFilter struct {
	ActorID  string `form:"actor_id"`
	Action   string `form:"action"`
	Entity   string `form:"entity"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type ActivityLogResponse struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actor_id,omitempty"`
	ActorName string          `json:"actor_name,omitempty"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id,omitempty"`
	Message   string          `json:"message"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt string          `json:"created_at"`
}

type PurgeResponse struct {
	Before  string `json:"before"`
	Deleted int64  `json:"deleted"`
}
