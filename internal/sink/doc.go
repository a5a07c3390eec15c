// Package sink acquires the destinations the engine writes into.
//
// A Store creates named Sinks. Every Sink must be finished exactly once,
// either with Close (commit) or Abort (discard what the backend can discard).
// Local files keep their partial bytes on Abort; remote uploads are
// cancelled so no partial object becomes visible.
//
// Destination names are routed by Router: "s3://bucket/key" and
// "minio://bucket/key" go to the object stores, anything else is a local
// path.
package sink
