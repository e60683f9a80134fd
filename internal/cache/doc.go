// Package cache maintains versioned local copies of installer bundles.
//
// A cache entry is a directory keyed by version under <root>/downloads; once
// present it is treated as authoritative and short-circuits all further
// resolution work. A marker file in the cache root guards against two
// fetcher processes downloading into the same root at once.
package cache
