package ipc

import (
	"encoding/json"
	"testing"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CommandType
		wantErr bool
	}{
		{name: "command only", input: `{"command":"GET_STATUS"}`, want: CommandGetStatus},
		{name: "with payload", input: `{"command":"DRAG","payload":{"id":1,"x":5,"y":6}}`, want: CommandDrag},
		{name: "missing command", input: `{"payload":{}}`, wantErr: true},
		{name: "not json", input: `GET_STATUS`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequest: %v", err)
			}
			if req.Command != tt.want {
				t.Fatalf("command = %q, want %q", req.Command, tt.want)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	var p DragPayload
	if err := decodePayload(nil, &p); err == nil {
		t.Fatalf("expected error for a missing payload")
	}
	if err := decodePayload(json.RawMessage(`{"id":"x"}`), &p); err == nil {
		t.Fatalf("expected error for a malformed payload")
	}
	if err := decodePayload(json.RawMessage(`{"id":7,"x":1,"y":2}`), &p); err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if p.ID != 7 || p.X != 1 || p.Y != 2 {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestResponses(t *testing.T) {
	resp, err := NewOKResponse(nil)
	if err != nil {
		t.Fatalf("NewOKResponse: %v", err)
	}
	if resp.Status != "OK" || resp.Data != nil {
		t.Fatalf("unexpected response %+v", resp)
	}

	data, err := NewErrorResponse("nope").Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"status":"ERROR","error":"nope"}` {
		t.Fatalf("unexpected encoding %s", data)
	}
}
