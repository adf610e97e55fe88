// Package catalog tracks the ledges near a character and classifies them
// once per frame.
//
// The proximity set is the only state that survives between frames; it is
// fed by enter/exit events from whatever detects ledge triggers. Update
// rebuilds the upper and lower ledge lists from scratch each frame, reusing
// their backing arrays.
package catalog
