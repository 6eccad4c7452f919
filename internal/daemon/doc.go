// Package daemon provides the orchestration pieces veild is assembled from:
// the freedesktop notification bridge, configuration hot reload, and
// notices about the daemon's own events.
package daemon
