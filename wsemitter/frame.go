// Package wsemitter carries firings over websocket connections.
//
// A Hub is the server side: it accepts websocket clients and publishes
// firings to all of them. A Client is the Subscribable side: it fires every
// frame it reads on the frame channel, so assertions can run against a remote
// process.
//
// Frames are JSON objects of shape {"channel": "foo", "args": [...]}. Arguments
// go through encoding/json, numbers are received as float64.
package wsemitter

import (
	"errors"
	"time"
)

// Frame is the wire representation of a single firing
type Frame struct {
	Channel string `json:"channel"`
	Args    []any  `json:"args"`
}

// ErrClosed is returned when publishing on a closed Hub
var ErrClosed = errors.New("websocket emitter is closed")

const writeTimeout = 10 * time.Second
