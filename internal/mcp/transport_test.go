package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioTransport_ReadMessage(t *testing.T) {
	input := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	transport := NewStdioTransport(input, &bytes.Buffer{})

	req, err := transport.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, "ping", req.Method)
	assert.Equal(t, float64(1), req.ID)

	_, err = transport.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStdioTransport_ReadMessage_MalformedJSON(t *testing.T) {
	input := strings.NewReader("not json\n")
	transport := NewStdioTransport(input, &bytes.Buffer{})

	_, err := transport.ReadMessage()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse request")
}

func TestStdioTransport_WriteResponse(t *testing.T) {
	var output bytes.Buffer
	transport := NewStdioTransport(strings.NewReader(""), &output)

	err := transport.WriteResponse(NewResponse(1, map[string]string{"ok": "yes"}))
	require.NoError(t, err)

	line := output.String()
	assert.True(t, strings.HasSuffix(line, "\n"))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(line), &resp))
	assert.Equal(t, JSONRPCVersion, resp.JSONRPC)
	assert.Equal(t, float64(1), resp.ID)
}

func TestStdioTransport_WriteNotification(t *testing.T) {
	var output bytes.Buffer
	transport := NewStdioTransport(strings.NewReader(""), &output)

	err := transport.WriteNotification("notifications/resources/list_changed", nil)
	require.NoError(t, err)

	var n Notification
	require.NoError(t, json.Unmarshal(output.Bytes(), &n))
	assert.Equal(t, JSONRPCVersion, n.JSONRPC)
	assert.Equal(t, "notifications/resources/list_changed", n.Method)
	assert.Empty(t, n.Params)
}

func TestStdioTransport_Closed(t *testing.T) {
	var output bytes.Buffer
	transport := NewStdioTransport(strings.NewReader(`{"jsonrpc":"2.0","method":"ping"}`+"\n"), &output)
	require.NoError(t, transport.Close())

	_, err := transport.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)

	assert.ErrorIs(t, transport.WriteResponse(NewResponse(1, nil)), io.ErrClosedPipe)
	assert.ErrorIs(t, transport.WriteNotification("ping", nil), io.ErrClosedPipe)
}

type pingHandler struct{}

func (pingHandler) HandleRequest(ctx context.Context, req *Request) *Response {
	if req.Method == "ping" {
		return NewResponse(req.ID, map[string]any{})
	}
	return nil
}

func TestMessageLoop_ParseErrorThenContinue(t *testing.T) {
	input := strings.NewReader("{garbage}\n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	var output bytes.Buffer
	loop := NewMessageLoop(NewStdioTransport(input, &output), pingHandler{})

	err := loop.Run(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	require.Len(t, lines, 2)

	var errResp Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &errResp))
	require.NotNil(t, errResp.Error)
	assert.Equal(t, ErrCodeParseError, errResp.Error.Code)

	var okResp Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &okResp))
	assert.Nil(t, okResp.Error)
	assert.Equal(t, float64(1), okResp.ID)
}

func TestMessageLoop_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := NewMessageLoop(NewStdioTransport(blockingReader{}, &bytes.Buffer{}), pingHandler{})
	err := loop.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// blockingReader never returns; the loop must observe the context before
// issuing a read.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
