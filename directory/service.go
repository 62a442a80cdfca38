package directory

import (
	"log/slog"
	"sync"

	"github.com/forestrie/ic-siglog/cert"
	"github.com/forestrie/ic-siglog/internal/auditlog"
	"github.com/forestrie/ic-siglog/internal/bloomcache"
	"github.com/forestrie/ic-siglog/internal/rih"
	"github.com/forestrie/ic-siglog/internal/siglog"
)

// expectedLiveSeeds sizes the default seed cache; it is a capacity hint,
// not a hard limit (the underlying bloom filter degrades gracefully, at
// the cost of a higher false-positive rate, well past this count).
const expectedLiveSeeds = 10_000

const (
	// defaultExpirationPeriodNS is the device expiration window, ~1 year
	// in nanoseconds.
	defaultExpirationPeriodNS uint64 = 31_536_000_000_000_000
	// defaultSignatureExpirationPeriodNS is the signature-map record
	// lifetime, 10 minutes in nanoseconds.
	defaultSignatureExpirationPeriodNS uint64 = 600_000_000_000
	// maxSigsToPrune bounds the amortized pruning cost of every mutating
	// entry point.
	maxSigsToPrune = 10
)

// Service is the single-threaded identity-provider state machine: the
// persisted directory map, the transient signature map, and the
// certification facade, all behind one lock. The intended execution model
// is cooperative single-threaded, so the mutex only guards against
// accidental concurrent Go callers; it is never contended under that
// runtime.
type Service struct {
	mu sync.Mutex

	log       *slog.Logger
	platform  cert.Platform
	facade    cert.Facade
	sm        *siglog.SignatureMap
	users     map[uint64][]Entry
	audit     *auditlog.Log
	seedCache *bloomcache.SeedCache
}

// New constructs a Service with an empty directory and an empty signature
// map (the signature map starts empty at initialization and again after
// every upgrade). It also wires up an audit log (an append-only record of
// every mutation, see internal/auditlog) and a seed bloom-filter cache
// (internal/bloomcache) that lets GetDelegation short-circuit a definite
// miss without touching the signature map.
func New(platform cert.Platform, log *slog.Logger) *Service {
	return NewSized(platform, log, expectedLiveSeeds)
}

// NewSized is New with an explicit sizing hint for the seed cache.
func NewSized(platform cert.Platform, log *slog.Logger, expectedSeeds uint64) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		log:       log,
		platform:  platform,
		sm:        siglog.NewSignatureMap(),
		users:     make(map[uint64][]Entry),
		audit:     auditlog.New(),
		seedCache: bloomcache.NewSeedCache(expectedSeeds),
	}
	s.facade.RefreshRoot(s.sm, s.platform)
	return s
}

// Register inserts one device entry for a new user. Fails with
// ErrAlreadyRegistered if the user already exists.
func (s *Service) Register(userID uint64, alias string, pk []byte, credentialID []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; exists {
		return ErrAlreadyRegistered
	}

	now := s.platform.Time()
	expiration := now + defaultExpirationPeriodNS
	s.users[userID] = []Entry{{
		Alias:        alias,
		PublicKey:    pk,
		Expiration:   expiration,
		CredentialID: credentialID,
	}}

	s.putSignature(userID, pk, expiration, now)
	s.pruneAndRefresh(now)
	s.appendAudit(auditlog.EventRegister, userID, now, nil)
	s.log.Info("directory: registered user", "user_id", userID)
	return nil
}

// Add appends or refreshes a device entry for an existing user. Fails
// with ErrUnknownUser if the user does not exist. A device is matched by
// public-key equality; on match, alias/expiration/credentialID are
// overwritten in place. The previous signature-map record for this device
// is NOT deleted here: the new expiration changes the message hash, so
// Put inserts a fresh record under a different key and the stale one is
// left to expire naturally via PruneExpired.
func (s *Service) Add(userID uint64, alias string, pk []byte, credentialID []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.users[userID]
	if !ok {
		return ErrUnknownUser
	}

	now := s.platform.Time()
	expiration := now + defaultExpirationPeriodNS

	matched := false
	for i, e := range entries {
		if e.samePublicKey(pk) {
			entries[i] = Entry{
				Alias:        alias,
				PublicKey:    pk,
				Expiration:   expiration,
				CredentialID: credentialID,
			}
			matched = true
			break
		}
	}
	if !matched {
		entries = append(entries, Entry{
			Alias:        alias,
			PublicKey:    pk,
			Expiration:   expiration,
			CredentialID: credentialID,
		})
	}
	s.users[userID] = entries

	s.putSignature(userID, pk, expiration, now)
	s.pruneAndRefresh(now)
	s.appendAudit(auditlog.EventAddDevice, userID, now, pk)
	s.log.Info("directory: added device", "user_id", userID, "new_device", !matched)
	return nil
}

// Remove deletes the matching device; if it was the last device, the
// user record is removed too. It never errors: an unknown user or device
// is a silent no-op.
func (s *Service) Remove(userID uint64, pk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.platform.Time()
	entries, ok := s.users[userID]
	if ok {
		seed := rih.HashSeed(userID)
		kept := entries[:0]
		for _, e := range entries {
			if e.samePublicKey(pk) {
				msg := rih.DelegationMessageHash(e.PublicKey, e.Expiration, nil)
				s.sm.Delete(seed, msg)
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(s.users, userID)
		} else {
			s.users[userID] = kept
		}
	}

	s.pruneAndRefresh(now)
	s.appendAudit(auditlog.EventRemoveDevice, userID, now, pk)
	s.log.Info("directory: removed device", "user_id", userID)
	return nil
}

// Lookup returns the caller's enrolled devices. Read-only; does not
// mutate SM or trigger pruning.
func (s *Service) Lookup(userID uint64) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// GetDelegation returns the delegation for (userID, pk) together with the
// CBOR-encoded certification envelope proving it. Fails with
// ErrUnknownDevice if no entry matches pk, and with ErrNoSignature if SM
// has no witness for the device or the host certificate is unavailable.
func (s *Service) GetDelegation(userID uint64, pk []byte) (SignedDelegation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.users[userID]
	if !ok {
		return SignedDelegation{}, ErrUnknownDevice
	}
	var entry *Entry
	for i := range entries {
		if entries[i].samePublicKey(pk) {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return SignedDelegation{}, ErrUnknownDevice
	}

	seed := rih.HashSeed(userID)
	if !s.seedCache.MaybeContains(seed) {
		// Definite miss: no live signature was ever inserted for this
		// seed, so there is nothing for the signature map to find.
		return SignedDelegation{}, ErrNoSignature
	}
	msg := rih.DelegationMessageHash(entry.PublicKey, entry.Expiration, nil)

	envelope, err := s.facade.GetDelegation(s.sm, s.platform, seed, msg)
	if err != nil {
		return SignedDelegation{}, ErrNoSignature
	}
	return SignedDelegation{
		Delegation: Delegation{
			PublicKey:  entry.PublicKey,
			Expiration: entry.Expiration,
		},
		Signature: envelope,
	}, nil
}

// Snapshot returns the persisted directory state. The user map only; the
// signature map is transient and never persisted.
func (s *Service) Snapshot() map[uint64][]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uint64][]Entry, len(s.users))
	for id, entries := range s.users {
		cp := make([]Entry, len(entries))
		copy(cp, entries)
		out[id] = cp
	}
	return out
}

// Restore replaces the directory map with a previously snapshotted one,
// reinitializes the signature map to empty, and refreshes the certified
// root. Signatures are intentionally volatile and must be re-requested
// after an upgrade.
func (s *Service) Restore(users map[uint64][]Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[uint64][]Entry, len(users))
	for id, entries := range users {
		cp := make([]Entry, len(entries))
		copy(cp, entries)
		s.users[id] = cp
	}
	s.sm = siglog.NewSignatureMap()
	s.facade.RefreshRoot(s.sm, s.platform)
}

func (s *Service) putSignature(userID uint64, pk []byte, expiration, now uint64) {
	seed := rih.HashSeed(userID)
	msg := rih.DelegationMessageHash(pk, expiration, nil)
	s.sm.Put(seed, msg, siglog.Expiry(now+defaultSignatureExpirationPeriodNS))
	s.seedCache.Insert(seed)
}

func (s *Service) pruneAndRefresh(now uint64) {
	s.sm.PruneExpired(siglog.Expiry(now), maxSigsToPrune)
	s.facade.RefreshRoot(s.sm, s.platform)
}

// appendAudit records a directory mutation in the append-only audit log.
func (s *Service) appendAudit(kind auditlog.EventKind, userID, timestamp uint64, detail []byte) {
	s.audit.Append(auditlog.Event{
		Kind:      kind,
		UserID:    userID,
		Timestamp: timestamp,
		Detail:    detail,
	})
}

// AuditRoot returns the current audit log's Merkle root, or nil if no
// mutation has been recorded yet.
func (s *Service) AuditRoot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audit.Size() == 0 {
		return nil
	}
	root := s.audit.Root()
	return root[:]
}
