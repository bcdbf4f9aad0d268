package domain

// RawMutation is the wire envelope of one client mutation:
// {clientID, id, name, args, timestamp}.
type RawMutation struct {
	ClientID  string         `json:"clientID"`
	ID        int32          `json:"id"`
	Name      string         `json:"name"`
	Args      map[string]any `json:"args"`
	Timestamp float64        `json:"timestamp"`
}

// PushRequest is the wire body of POST /api/replicache/push.
type PushRequest struct {
	ClientGroupID string        `json:"clientGroupID"`
	Mutations     []RawMutation `json:"mutations"`
}

// PushResponse is the wire response of POST /api/replicache/push.
type PushResponse struct {
	Success bool `json:"success"`
}

// PullRequest is the wire body of POST /api/replicache/pull.
type PullRequest struct {
	ClientGroupID string  `json:"clientGroupID"`
	Cookie        *Cookie `json:"cookie"`
}

// Recognised mutation names dispatched by the Push Pipeline (§4.6 step 4).
const (
	MutationCreateChat        = "createChat"
	MutationUpdateChat        = "updateChat"
	MutationDeleteChat        = "deleteChat"
	MutationForkChat          = "forkChat"
	MutationCreateMessage     = "createMessage"
	MutationUpdateMessage     = "updateMessage"
	MutationDeleteMessage     = "deleteMessage"
	MutationCreateActiveModel = "createActiveModel"
	MutationUpdateActiveModel = "updateActiveModel"
	MutationDeleteActiveModel = "deleteActiveModel"
)
