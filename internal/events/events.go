package events

import (
	"encoding/json"
	"fmt"
)

// Event names emitted by a game.
const (
	Played = "played"
	Ended  = "ended"
)

// GameChannel returns the Pub/Sub channel on which a game's events are relayed.
func GameChannel(gameID string) string {
	return fmt.Sprintf("channel:game:%s", gameID)
}

// Envelope is a relayed game event as published via Pub/Sub and sent to
// websocket clients.
type Envelope struct {
	Type    string          `json:"event"`
	GameID  string          `json:"game_id"`
	Payload json.RawMessage `json:"payload"`
}

// PlayedPayload is the payload for the "played" event.
type PlayedPayload struct {
	PlayerIndex int    `json:"player_index"`
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	Swap        bool   `json:"swap,omitempty"`
	Notation    string `json:"notation"`
	Ply         int    `json:"ply"`
}

// EndedPayload is the payload for the "ended" event. Winner is -1 when the
// game was canceled.
type EndedPayload struct {
	Winner int    `json:"winner"`
	Reason string `json:"reason"`
}

// NewEnvelope marshals payload into an envelope of the given type.
func NewEnvelope(eventType, gameID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Envelope{Type: eventType, GameID: gameID, Payload: raw}, nil
}
