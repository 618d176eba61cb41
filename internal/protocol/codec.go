package protocol

import (
	"encoding/json"
	"fmt"
)

const typeField = "type"

// Encode marshals e with its "type" tag.
func Encode(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.Type(), err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("flatten %s: %w", e.Type(), err)
	}
	tag, err := json.Marshal(e.Type())
	if err != nil {
		return nil, err
	}
	fields[typeField] = tag

	return json.Marshal(fields)
}

func newEvent(t Type) (Event, bool) {
	switch t {
	case TypeRoomList:
		return &RoomList{}, true
	case TypeRoomCreated:
		return &RoomCreated{}, true
	case TypeRoomUpdated:
		return &RoomUpdated{}, true
	case TypeJoinedRoom:
		return &JoinedRoom{}, true
	case TypePlayerJoined:
		return &PlayerJoined{}, true
	case TypePlayerReady:
		return &PlayerReady{}, true
	case TypeGameStart:
		return &GameStart{}, true
	case TypeWordFound:
		return &WordFound{}, true
	case TypeWordInvalid:
		return &WordInvalid{}, true
	case TypeGameOver:
		return &GameOver{}, true
	case TypePlayerLeft:
		return &PlayerLeft{}, true
	case TypeError:
		return &Error{}, true
	}
	return nil, false
}

// Decode reads a server frame into its concrete event type. The returned
// event is a pointer, e.g. *GameStart.
func Decode(data []byte) (Event, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	e, ok := newEvent(head.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrMalformed, head.Type)
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}

	return e, nil
}
