package sse

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrame_Bytes(t *testing.T) {
	f := Frame{ID: "abc", Event: "endpoint", Data: []byte(`{"a":1}`)}
	require.Equal(t, "id: abc\nevent: endpoint\ndata: {\"a\":1}\n\n", string(f.Bytes()))
}

func TestCommentBytes(t *testing.T) {
	require.Equal(t, ": keep-alive\n\n", string(CommentBytes("keep-alive")))
}

func TestWrap_AlreadyJSONRPCPassesThrough(t *testing.T) {
	data, err := Wrap(map[string]interface{}{"jsonrpc": "2.0", "method": "notifications/endpoint"})
	require.NoError(t, err)
	require.Contains(t, string(data), `"jsonrpc":"2.0"`)
}

func TestWrap_TypeField(t *testing.T) {
	data, err := Wrap(map[string]interface{}{"type": "welcome", "sessionId": "s1"})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "notifications/welcome", decoded["method"])
	params := decoded["params"].(map[string]interface{})
	require.Equal(t, "s1", params["sessionId"])
	require.NotContains(t, params, "type")
}

func TestWrap_ResultWithID(t *testing.T) {
	data, err := Wrap(map[string]interface{}{"id": float64(1), "result": map[string]interface{}{"ok": true}})
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `"result"`))
}

func TestWrap_ErrorWithIDNormalizes(t *testing.T) {
	data, err := Wrap(map[string]interface{}{"id": float64(2), "error": "boom"})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	errObj := decoded["error"].(map[string]interface{})
	require.Equal(t, float64(-32000), errObj["code"])
	require.Equal(t, "boom", errObj["message"])
}

func TestWrap_DefaultWrapsAsMessage(t *testing.T) {
	data, err := Wrap(map[string]interface{}{"foo": "bar"})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "notifications/message", decoded["method"])
}

func TestEndpointEventStreamable(t *testing.T) {
	f := EndpointEventStreamable("/mcp")
	require.Equal(t, "endpoint", f.Event)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(f.Data, &decoded))
	require.Equal(t, "2.0", decoded["jsonrpc"])
	require.Equal(t, "notifications/endpoint", decoded["method"])
	params := decoded["params"].(map[string]interface{})
	require.Equal(t, "/mcp", params["endpoint"])
}

func TestEndpointEventLegacy(t *testing.T) {
	f := EndpointEventLegacy("/messages?session_id=abc")
	var decoded string
	require.NoError(t, json.Unmarshal(f.Data, &decoded))
	require.Equal(t, "/messages?session_id=abc", decoded)
}
