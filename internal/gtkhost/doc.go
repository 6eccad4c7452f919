// Package gtkhost shows overlays on a Wayland desktop. Overlays live in a
// single full-screen layer-shell window that is only mapped while something
// is attached; the GLib main loop is the owner thread.
package gtkhost
