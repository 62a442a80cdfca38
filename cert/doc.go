// Package cert implements the certification facade (CF): the component
// that ties a signature map's root to a host platform's certified-data
// slot and packages Merkle inclusion witnesses as CBOR envelopes for
// off-platform verification.
//
// The host platform this service is designed to run inside (a replicated
// execution environment exposing certified data natively) is represented
// here by the Platform interface, with MockPlatform standing in as a
// concrete implementation for a deployment with no such host.
package cert
