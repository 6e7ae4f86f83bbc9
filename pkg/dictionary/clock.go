package dictionary

import "sync/atomic"

// processClock is the process-wide logical clock spec.md §4.4
// describes: every public façade entry advances it once, and writers
// stamp it onto UnigramProperty.Timestamp/bigram.Property.Timestamp.
// It is a logical counter, not wall-clock time (wall-clock formatting
// is out of scope per spec.md §1), shared by every *Facade in the
// process — mirroring AOSP's process-wide TimeKeeper::setCurrentTime()
// singleton rather than a per-handle field. spec.md §5 explicitly
// allows this: "races are benign under the single-handle-per-thread
// rule", and atomic.Add keeps the counter itself race-free regardless.
var processClock uint64

// advanceClock bumps the logical clock and returns the new value,
// truncated to 32 bits per the UnigramProperty/BigramProperty
// Timestamp field width.
func advanceClock() uint32 {
	return uint32(atomic.AddUint64(&processClock, 1))
}
