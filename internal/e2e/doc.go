// Package e2e holds the behaviour suite that drives the HTTP API against
// in-memory stores, a real PDF toolchain and a scripted language model.
package e2e
