// Package handler implements the HTTP API of the sketch editor.
//
// Routes are mounted on a chi router by NewRouter. Every handler delegates
// to service.GraphService and speaks JSON. Failures are returned as
// {error, details} with a status derived from the error chain:
//
//	unknown node or edge              404
//	rejected connection               422
//	malformed document, bad input     400
//	analysis already running          409
//	nothing to undo/redo, not chaos   409
//	scorer failure                    502
//
// The /events endpoint streams service events as Server-Sent Events.
package handler
