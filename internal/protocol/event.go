package protocol

import (
	"github.com/bloops-games/wordmix/internal/grid"
	"github.com/bloops-games/wordmix/internal/room"
)

type Type string

const (
	TypeRoomList     Type = "room_list"
	TypeRoomCreated  Type = "room_created"
	TypeRoomUpdated  Type = "room_updated"
	TypeJoinedRoom   Type = "joined_room"
	TypePlayerJoined Type = "player_joined"
	TypePlayerReady  Type = "player_ready"
	TypeGameStart    Type = "game_start"
	TypeWordFound    Type = "word_found"
	TypeWordInvalid  Type = "word_invalid"
	TypeGameOver     Type = "game_over"
	TypePlayerLeft   Type = "player_left"
	TypeError        Type = "error"
)

// Event is a server to client message.
type Event interface {
	Type() Type
}

type Code string

const (
	CodeMalformed          Code = "malformed"
	CodeUnknownAction      Code = "unknown_action"
	CodeInvalidLevel       Code = "invalid_level"
	CodeInvalidMode        Code = "invalid_mode"
	CodeRoomNotFound       Code = "room_not_found"
	CodeRoomFull           Code = "room_full"
	CodeRoomAlreadyStarted Code = "room_already_started"
	CodeNameTaken          Code = "name_taken"
	CodeNotInRoom          Code = "not_in_room"
	CodeAlreadyInRoom      Code = "already_in_room"
	CodeNotStarted         Code = "not_started"
	CodeGameOver           Code = "game_over"
	CodeGenerationFailure  Code = "generation_failure"
	CodeInternal           Code = "internal"
)

type RoomList struct {
	Rooms []room.Summary `json:"rooms"`
}

type RoomCreated struct {
	Room room.Summary `json:"room"`
}

type RoomUpdated struct {
	Room room.Summary `json:"room"`
}

type JoinedRoom struct {
	Room room.Summary `json:"room"`
}

type PlayerJoined struct {
	PlayerName string       `json:"player_name"`
	Room       room.Summary `json:"room"`
}

type PlayerReady struct {
	PlayerName string `json:"player_name"`
}

type GameStart struct {
	Grid     *grid.Grid `json:"grid"`
	Words    []string   `json:"words"`
	Duration int        `json:"duration"`
	Seed     int64      `json:"seed"`
}

type WordFound struct {
	Word       string         `json:"word"`
	Finder     string         `json:"finder"`
	Scores     map[string]int `json:"scores"`
	FoundCount int            `json:"found_count"`
	TotalWords int            `json:"total_words"`
}

type WordInvalid struct {
	Reason room.Reason `json:"reason"`
	Word   string      `json:"word"`
	By     string      `json:"by,omitempty"`
}

// GameOver closes a match. FoundWords is a JSON object keyed by word whose
// value is the player who found it, or "" in coop mode where finds are
// shared. Clients wanting a plain list read its keys.
type GameOver struct {
	Winner     string            `json:"winner"`
	Scores     map[string]int    `json:"scores"`
	FoundWords map[string]string `json:"found_words"`
}

type PlayerLeft struct {
	PlayerName string `json:"player_name"`
}

type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (RoomList) Type() Type     { return TypeRoomList }
func (RoomCreated) Type() Type  { return TypeRoomCreated }
func (RoomUpdated) Type() Type  { return TypeRoomUpdated }
func (JoinedRoom) Type() Type   { return TypeJoinedRoom }
func (PlayerJoined) Type() Type { return TypePlayerJoined }
func (PlayerReady) Type() Type  { return TypePlayerReady }
func (GameStart) Type() Type    { return TypeGameStart }
func (WordFound) Type() Type    { return TypeWordFound }
func (WordInvalid) Type() Type  { return TypeWordInvalid }
func (GameOver) Type() Type     { return TypeGameOver }
func (PlayerLeft) Type() Type   { return TypePlayerLeft }
func (Error) Type() Type        { return TypeError }

func (e Error) Error() string {
	return string(e.Code) + ": " + e.Message
}
