package core

// Transport is the bidirectional signal channel between this client and the
// hub. Incoming is closed when the transport drops; the orchestrator treats
// that as leaving the room.
type Transport interface {
	Send(v any) error
	Incoming() <-chan []byte
	Close()
}
