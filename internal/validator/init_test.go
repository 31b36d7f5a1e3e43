package validator

import (
	"ctchen222/Hex/pkg/proto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientMessages(t *testing.T) {
	tests := []struct {
		name    string
		msg     proto.ClientToServerMessage
		wantErr string
	}{
		{name: "move", msg: proto.ClientToServerMessage{Type: "move", Position: []int{1, 2}}},
		{name: "swap", msg: proto.ClientToServerMessage{Type: "swap"}},
		{name: "resign", msg: proto.ClientToServerMessage{Type: "resign"}},
		{name: "missing type", msg: proto.ClientToServerMessage{}, wantErr: "Type failed required"},
		{name: "unknown type", msg: proto.ClientToServerMessage{Type: "rematch"}, wantErr: "Type failed oneof=move swap resign"},
		{name: "move without position", msg: proto.ClientToServerMessage{Type: "move"}, wantErr: "Position failed required_for_move"},
		{name: "short position", msg: proto.ClientToServerMessage{Type: "move", Position: []int{1}}, wantErr: "Position failed len=2"},
		{name: "negative coordinate", msg: proto.ClientToServerMessage{Type: "move", Position: []int{1, -1}}, wantErr: "failed gte=0"},
		{name: "swap with position", msg: proto.ClientToServerMessage{Type: "swap", Position: []int{0, 0}}, wantErr: "Position failed excluded_for_swap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.msg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
