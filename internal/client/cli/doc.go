// Package cli is the interactive command-line client for the CDN server.
//
// App wires the client config to an HTTP API client and runs a small REPL:
// login prompts for the admin password without echo, upload streams a local
// file and prints the public URL, list pages through the library and delete
// removes a file after confirmation. Start it with App.Run, which blocks until
// the user exits.
package cli
