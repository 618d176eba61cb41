// Package protocol defines the JSON messages exchanged over the websocket.
//
// Clients send requests tagged by an "action" field. The server answers with
// events tagged by a "type" field; each event type is its own Go struct.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Action string

const (
	ActionListRooms   Action = "list_rooms"
	ActionCreateRoom  Action = "create_room"
	ActionJoinRoom    Action = "join_room"
	ActionPlayerReady Action = "player_ready"
	ActionCheckWord   Action = "check_word"
	ActionLeaveRoom   Action = "leave_room"
)

const (
	DefaultMode  = "duel"
	DefaultLevel = 1
)

var (
	ErrMalformed     = fmt.Errorf("malformed message")
	ErrUnknownAction = fmt.Errorf("unknown action")
)

type Request struct {
	Action     Action `json:"action"`
	PlayerName string `json:"player_name,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Level      *int   `json:"level,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
	RoomID     string `json:"room_id,omitempty"`
	Word       string `json:"word,omitempty"`
}

// LevelOrDefault returns the requested level, 1 when none was sent.
func (r Request) LevelOrDefault() int {
	if r.Level == nil {
		return DefaultLevel
	}
	return *r.Level
}

// ModeOrDefault returns the requested mode, duel when none was sent.
func (r Request) ModeOrDefault() string {
	if r.Mode == "" {
		return DefaultMode
	}
	return r.Mode
}

func (r Request) Validate() error {
	switch r.Action {
	case ActionListRooms, ActionPlayerReady, ActionLeaveRoom:
	case ActionCreateRoom:
		if strings.TrimSpace(r.PlayerName) == "" {
			return fmt.Errorf("%w: player_name is required", ErrMalformed)
		}
	case ActionJoinRoom:
		if strings.TrimSpace(r.PlayerName) == "" || r.RoomID == "" {
			return fmt.Errorf("%w: room_id and player_name are required", ErrMalformed)
		}
	case ActionCheckWord:
		if strings.TrimSpace(r.Word) == "" {
			return fmt.Errorf("%w: word is required", ErrMalformed)
		}
	case "":
		return fmt.Errorf("%w: missing action", ErrMalformed)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, r.Action)
	}

	return nil
}

// ParseRequest decodes and validates one client frame.
func ParseRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}

	req.PlayerName = strings.TrimSpace(req.PlayerName)
	return req, nil
}
