package app

import "log"

// Participant is one live connection in the registry. The gate permits
// exactly one accepted answer per open question window.
type Participant struct {
	Name      string
	conn      Conn
	mayAnswer bool
}

// registry tracks live participants in join order. It carries no lock of
// its own: the coordinator serializes every access under its mutex.
// Duplicate names coexist as distinct entries, so removal goes by pointer
// identity rather than by name.
type registry struct {
	participants []*Participant
}

func (r *registry) register(p *Participant) {
	r.participants = append(r.participants, p)
}

// unregister removes p. It is a no-op when p is already gone: disconnect
// events can race session-end cleanup.
func (r *registry) unregister(p *Participant) {
	for i, existing := range r.participants {
		if existing == p {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return
		}
	}
}

func (r *registry) openAllGates() {
	for _, p := range r.participants {
		p.mayAnswer = true
	}
}

// broadcast sends payload to every live participant. Delivery failures are
// isolated per participant: logged and skipped, never surfaced to the
// caller or allowed to abort the remaining sends.
func (r *registry) broadcast(payload any) {
	for _, p := range r.participants {
		if err := p.conn.Send(payload); err != nil {
			log.Printf("participant unreachable, cannot send data: %s: %v", p.Name, err)
		}
	}
}

// closeAll closes every participant connection with the given reason, with
// the same per-participant failure isolation as broadcast.
func (r *registry) closeAll(reason string) {
	for _, p := range r.participants {
		if err := p.conn.Close(reason); err != nil {
			log.Printf("participant unreachable, cannot close the connection: %s: %v", p.Name, err)
		}
	}
}

func (r *registry) size() int {
	return len(r.participants)
}
