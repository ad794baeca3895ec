// Package logging provides the structured logging interface used by
// parsearch. The searcher, the HTTP server and the CLI log through Logger;
// the only backend is zerolog, as JSON for the server and as console lines
// for the command line.
package logging
