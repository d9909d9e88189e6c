// Package cli implements the pulse command-line interface.
//
// Each Cobra command delegates to a *Command function in this package, which
// loads config, wires the streaming stack and renders the result.
//
// # Command Structure
//
//	pulse [watch]        - Live dashboard (default command)
//	pulse tail           - One line per reading, or JSON lines with --json
//	pulse login          - Exchange username/password for a token
//	pulse devices        - List device metadata
//	pulse config init    - Write a default config file
//	pulse config set     - Change one config value
//	pulse version        - Build information
//
// # Streaming
//
// startStream builds the Socket.IO transport, the REST client and the
// dashboard controller from config, and starts the controller against a
// credential store seeded with auth.token. Commands use StreamContext to
// carry that state; it must be closed to stop the session.
//
// # Flag Handling
//
// Global flags (--config, --server, --token, --capacity, --interval,
// --metrics-addr, --verbose, --no-color, --json) are persistent flags on the
// root command. Set flags override the config file and PULSE_* environment
// variables.
package cli
