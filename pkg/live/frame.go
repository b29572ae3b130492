package live

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame types.
const (
	// FrameNav asks the server to navigate (client → server).
	FrameNav = "nav"
	// FrameMount carries the container HTML after a change (server → client).
	FrameMount = "mount"
	// FrameReplace tells the client to replace its URL (server → client).
	// With Reload set the client must load the page from the server.
	FrameReplace = "replace"
	// FrameError reports a rejected frame or a failed navigation.
	FrameError = "error"
)

// Frame is one WebSocket message, msgpack-encoded in a binary frame.
type Frame struct {
	T      string `msgpack:"t"`
	Path   string `msgpack:"path,omitempty"`
	HTML   string `msgpack:"html,omitempty"`
	Title  string `msgpack:"title,omitempty"`
	Msg    string `msgpack:"msg,omitempty"`
	Reload bool   `msgpack:"reload,omitempty"`
}

// EncodeFrame serializes f.
func EncodeFrame(f Frame) ([]byte, error) {
	b, err := msgpack.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("live: encode frame: %w", err)
	}
	return b, nil
}

// DecodeFrame parses a frame.
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("live: decode frame: %w", err)
	}
	if f.T == "" {
		return Frame{}, fmt.Errorf("live: frame has no type")
	}
	return f, nil
}
