package session

import "context"

// State names the step of the intake conversation a chat is waiting on.
type State string

const (
	// StateIdle means no submission is in progress.
	StateIdle State = ""
	// StateAwaitingPhoto means the chat was asked for the problem photo.
	StateAwaitingPhoto State = "awaiting_photo"
	// StateAwaitingDescription means the photo is stored and a description
	// is expected next.
	StateAwaitingDescription State = "awaiting_description"
	// StateAwaitingLocation means description is captured and the chat may
	// share coordinates or skip.
	StateAwaitingLocation State = "awaiting_location"
)

// Draft is the partial submission accumulated across steps. Lat and Lon are
// set together or not at all.
type Draft struct {
	PhotoPath   string   `json:"photo_path"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
}

// Session is one chat's conversation position plus its draft.
type Session struct {
	State State `json:"state"`
	Draft Draft `json:"draft"`
}

// Store holds per-chat sessions. A missing chat reads back as the zero
// Session (StateIdle, empty draft).
type Store interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Put(ctx context.Context, chatID int64, s Session) error
	Clear(ctx context.Context, chatID int64) error
}
