// Package ui implements the interactive release picker.
//
// Completion callbacks of background installs reach the model through Home,
// which forwards them to the running program as messages so they execute on
// the program's update loop.
package ui
