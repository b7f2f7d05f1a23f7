// Package repository defines the data access interfaces for cloudsketch.
//
// The service layer keeps the working graph in memory and writes every
// change through a GraphRepository so a restarted server reopens the same
// sketch. The actual implementation is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation stores nodes and edges with an ordinal column,
// so declaration order survives a reload, plus the editor workspace
// (mode, selection) and the history of analysis runs. Attribute bags and
// id lists are stored as JSON columns.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
