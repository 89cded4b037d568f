// Package execs starts long-running child processes whose standard output is
// consumed as a stream, such as a capture tool writing raw video frames.
//
// The child's environment is built from configuration: only a small set of
// essential variables is inherited by default, and more can be passed through
// by name or pattern.
package execs
