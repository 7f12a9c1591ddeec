// Package viz draws pendulum scenes in the terminal.
//
// [Model] is a Bubble Tea program that steps a [scene.Scene] once per tick
// and paints each frame onto a Braille [Canvas]: traces first, then rods.
// A lone pendulum is drawn in the theme's pendulum color; larger scenes use
// the per-pendulum colormap.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	T     - Toggle dark/light theme
//	?     - Show help overlay
//	Q     - Quit
package viz
