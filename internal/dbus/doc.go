// Package dbus exposes the presenter on the session bus. It serves the
// io.github.jmylchreest.Veil1 interface used by the veil CLI and can
// optionally claim org.freedesktop.Notifications so desktop notifications
// show up as toasts and alerts.
package dbus
