package sse

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Frame is a single SSE event: id/event/data lines terminated by a blank
// line.
type Frame struct {
	ID    string
	Event string
	Data  []byte
}

// Bytes renders the frame in wire format.
func (f Frame) Bytes() []byte {
	out := ""
	if f.ID != "" {
		out += "id: " + f.ID + "\n"
	}
	if f.Event != "" {
		out += "event: " + f.Event + "\n"
	}
	out += "data: " + string(f.Data) + "\n\n"
	return []byte(out)
}

// CommentBytes renders a keep-alive comment line, a valid SSE frame on its
// own per spec.md §6.
func CommentBytes(text string) []byte {
	return []byte(": " + text + "\n\n")
}

var wrappableTypes = map[string]bool{
	"welcome":    true,
	"ping":       true,
	"error":      true,
	"connection": true,
}

// Wrap applies the envelope-wrapping rule from spec.md §4.6 to an
// arbitrary payload, producing the JSON bytes to place in a frame's data
// line. A payload that already carries a "jsonrpc" key bypasses wrapping
// entirely.
func Wrap(payload map[string]interface{}) ([]byte, error) {
	if _, ok := payload["jsonrpc"]; ok {
		return json.Marshal(payload)
	}

	if t, ok := payload["type"].(string); ok && wrappableTypes[t] {
		remainder := make(map[string]interface{}, len(payload))
		for k, v := range payload {
			if k != "type" {
				remainder[k] = v
			}
		}
		return json.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"method":  "notifications/" + t,
			"params":  remainder,
		})
	}

	if _, hasResult := payload["result"]; hasResult {
		if _, hasID := payload["id"]; hasID {
			return json.Marshal(payload)
		}
	}

	if errVal, hasError := payload["error"]; hasError {
		if _, hasID := payload["id"]; hasID {
			normalized := normalizeError(errVal)
			out := make(map[string]interface{}, len(payload))
			for k, v := range payload {
				out[k] = v
			}
			out["error"] = normalized
			return json.Marshal(out)
		}
	}

	return json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "notifications/message",
		"params":  payload,
	})
}

func normalizeError(v interface{}) interface{} {
	switch e := v.(type) {
	case map[string]interface{}:
		if _, hasCode := e["code"]; hasCode {
			return e
		}
		return map[string]interface{}{"code": -32000, "message": fmt.Sprintf("%v", e)}
	case string:
		return map[string]interface{}{"code": -32000, "message": e}
	default:
		return map[string]interface{}{"code": -32000, "message": fmt.Sprintf("%v", e)}
	}
}

// NewFrame wraps payload and produces a Frame with a fresh UUID id.
func NewFrame(event string, payload map[string]interface{}) (Frame, error) {
	data, err := Wrap(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{ID: uuid.NewString(), Event: event, Data: data}, nil
}

// EndpointEventStreamable is the first frame on a freshly established
// Streamable GET stream.
func EndpointEventStreamable(endpoint string) Frame {
	data, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "notifications/endpoint",
		"params":  map[string]interface{}{"endpoint": endpoint},
	})
	return Frame{ID: uuid.NewString(), Event: "endpoint", Data: data}
}

// EndpointEventLegacy is the first frame on a legacy /sse stream, whose
// payload is a literal path string rather than a JSON object (preserved
// per spec.md §9's open question on the differing endpoint-event shapes).
func EndpointEventLegacy(messagePath string) Frame {
	data, _ := json.Marshal(messagePath)
	return Frame{ID: uuid.NewString(), Event: "endpoint", Data: data}
}

// PingFrame is the periodic keep-alive notification on the Streamable
// transport.
func PingFrame(timestamp string) (Frame, error) {
	return NewFrame("message", map[string]interface{}{
		"type":      "ping",
		"timestamp": timestamp,
	})
}
