package app

// Conn is the capability the coordinator holds for talking to one connected
// peer. The transport owns the underlying socket and its lifecycle; the
// coordinator only sends payloads and requests closure through it, and
// treats every failure as soft (logged, never propagated).
type Conn interface {
	Send(v any) error
	Close(reason string) error
}
