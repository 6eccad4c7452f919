// Package audio plays a sound when an overlay appears. It uses the beep
// library to decode WAV, OGG and MP3 files, with volume control and one
// sound per overlay kind.
package audio
