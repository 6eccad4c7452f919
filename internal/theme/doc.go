// Package theme resolves the stylesheets veild applies to overlay content.
// Bundled themes are embedded; user themes live in ~/.config/veil/themes/
// and may @import each other or the bundled partials.
package theme
