// Package service implements business logic for cloudsketch.
//
// GraphService owns the working sketch: the logical graph, the current
// selection, the editor mode, undo/redo history and the last analysis
// result. Every operation runs under one mutex so it is atomic with respect
// to the others; the only exception is the scorer call made by RunAnalysis,
// which runs unlocked so the graph stays editable while a remote scorer is
// slow.
//
// # Persistence
//
// The in-memory state is authoritative. After each change the graph and
// workspace are written through to a repository.GraphRepository; write
// failures are logged and do not undo the change.
//
// # Event System
//
// Changes are published on an EventBus for Server-Sent Events clients.
package service
