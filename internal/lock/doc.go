// Package lock provides the time-bounded mutual exclusion used to serialise
// pairing passes across coordinator processes. Locks are non-blocking: TryLock
// either takes the key or reports that someone else holds it. Every lock carries
// a TTL so a coordinator that dies mid-pass cannot wedge the key; a pass that
// outlives its TTL may overlap with the next holder.
package lock
