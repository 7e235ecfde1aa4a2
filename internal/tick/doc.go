// Package tick decides which world objects need per-cycle processing.
//
// The set of eligible objects is derived once and reused across cycles. It
// is rebuilt only when the object registry or the region collection changes
// membership (tracked through their version counters), or when Invalidate is
// called. Classification combines a static, catalog-driven verdict per type
// with a dynamic check of each object's components.
//
// Component state can change without any version bump (an entry cooldown
// armed on an idle ruin, a countdown expiring). The cache does not observe
// those changes: callers that arm or disarm components invalidate the cache
// themselves, and Orchestrator can bound the window with MaxStaleCycles.
package tick
