package auditlog

import "github.com/forestrie/ic-siglog/internal/rih"

// EventKind identifies the directory mutation an audit event records.
type EventKind uint8

const (
	EventRegister EventKind = iota + 1
	EventAddDevice
	EventRemoveDevice
)

// Event is one directory mutation recorded in the audit log. Detail
// carries the mutation's device public key (Add/Remove) or is nil
// (Register).
type Event struct {
	Kind      EventKind
	UserID    uint64
	Timestamp uint64
	Detail    []byte
}

const eventDomain = "ic-siglog-auditlog-event"

// HashEvent canonically hashes an event using RIH's encoding rules, so
// the audit log and the certified signature map share one hashing
// mental model rather than inventing a second one. Exposed so callers
// can recompute a leaf hash to pass to VerifyInclusion without needing
// the Log itself.
func HashEvent(e Event) rih.Hash {
	return hashEvent(e)
}

func hashEvent(e Event) rih.Hash {
	fields := map[string]rih.Value{
		"kind":      rih.U64(uint64(e.Kind)),
		"userID":    rih.U64(e.UserID),
		"timestamp": rih.U64(e.Timestamp),
		"detail":    rih.Bytes(e.Detail),
	}
	mapHash := rih.HashValue(rih.Map(fields))
	return rih.HashWithDomain(eventDomain, mapHash[:])
}
