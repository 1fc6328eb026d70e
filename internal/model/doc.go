// Package model contains the shared interfaces and data structures.
//
// This package should only contain types that several packages need to
// agree on, so that they do not need to import each other:
//
// - dircache.go: the directory cache handed to the transport;
//
// - http.go: structured HTTP/1.x requests and responses;
//
// - logger.go: an apex/log compatible logger;
//
// - transport.go: the transport used to exchange raw messages.
//
// In general, this package should not contain logic, unless this logic
// is strictly related to the data structures it defines.
package model
