// Package driver runs the streaming field analysis against one connected
// engine.
//
// The control flow is fixed and strictly sequential:
//
//  1. query the atom count and check the trajectory declares the same
//     count (hard precondition, nothing else is sent on a mismatch)
//  2. query site count and membership arrays
//  3. build fragments and resolve probe site indices
//  4. register the probes with the engine, exactly once
//  5. per frame: push coordinates, pull DFIELD then UFIELD, reduce, append
//  6. send EXIT, exactly once
//
// Every engine exchange is a blocking round trip with no timeout, and every
// error is non-transient: there is no retry anywhere, and no rows are emitted
// for a frame whose receive failed.
package driver
