package siglog

// Hash is the fixed 32-byte digest width used throughout the signature map.
type Hash = [32]byte

// Expiry is a monotonically-comparable timestamp in the host's time unit
// (nanoseconds). Entries with Expiry <= now are eligible for pruning.
type Expiry = uint64
