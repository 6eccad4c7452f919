// Package mainloop provides the single owner goroutine on which all overlay
// state, host mutation and timers run.
package mainloop
