// File: api/callbacks.go
// Author: momentics <momentics@gmail.com>
//
// Application callback registry. All hooks are optional; a nil entry
// means the event is dropped. Hooks run on the connection's task, so
// they must not block for long and must not panic.

package api

// ClientID identifies the single active client. IDs grow monotonically
// across reconnects so a stale handle never matches a newer client.
type ClientID int64

// NoClient is the sentinel handle used while no client is connected.
const NoClient ClientID = -1

// DataHandler receives a complete text or binary message.
type DataHandler func(client ClientID, data []byte)

// EventHandler receives connection lifecycle and control-frame events.
type EventHandler func(client ClientID)

// Callbacks holds the application hooks. The registry is fixed once
// the server starts; registration is rejected afterwards.
type Callbacks struct {
	OnText         DataHandler
	OnBinary       DataHandler
	OnPing         EventHandler
	OnPong         EventHandler
	OnClose        EventHandler
	OnConnected    EventHandler
	OnDisconnected EventHandler
}
