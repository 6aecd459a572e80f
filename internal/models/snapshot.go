package models

// Snapshot is the full persisted state: three flat entity lists, re-indexed
// by id when loaded. The layout doubles as the migration format for the
// JSON-array dumps produced by earlier versions of the app.
type Snapshot struct {
	Users         []*User         `json:"users"`
	Conversations []*Conversation `json:"conversations"`
	Groups        []*Group        `json:"groups"`
}
