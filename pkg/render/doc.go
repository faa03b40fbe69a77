// Package render serializes vdom trees to HTML with contextual escaping.
// The live server uses it to produce full-document frames; tests use it to
// assert on rendered output.
package render
