package cert

// Platform is the seam against the host runtime this service would
// normally run inside: a clock, the host's certificate over the
// last-published certified-data value, and a way to publish a new one. A
// real deployment implements this against whatever host actually supplies
// those three calls; MockPlatform is the implementation used when there is
// no such host.
type Platform interface {
	// Time returns the current host time in nanoseconds.
	Time() uint64
	// DataCertificate returns the host's certificate over the
	// most-recently-published certified-data value, or ok=false if none
	// has been published yet.
	DataCertificate() (cert []byte, ok bool)
	// SetCertifiedData publishes a new certified-data value to the host.
	SetCertifiedData(data []byte)
}
