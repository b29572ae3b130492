// Package live drives a router over a WebSocket.
//
// The browser opens /_spa/live?path=<location>, sends a nav frame for
// every intercepted link click or history change, and patches the element
// with the container id from each mount frame it receives. Frames are
// msgpack maps with a "t" key; see Frame.
package live
