// Package overlay implements the presentation core: overlay configuration,
// the present/dismiss lifecycle, the transition contract and the
// gesture-to-dismiss bridge. Hosts and content are supplied by callers.
package overlay
