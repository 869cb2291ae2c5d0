// Package cmd provides the CLI commands for yami.
//
// This package implements the command-line interface for yami, mapping
// every Milvus operation onto a group/action command pair and wrapping
// each outcome in a response envelope. It serves two audiences from the
// same binary: humans get styled tables and messages, coding agents get
// a structured JSON envelope with a stable shape.
//
// # Command Structure
//
// Each command is implemented as a constructor function that returns a
// *cli.Command, following the urfave/cli/v3 pattern. Group commands
// (collection, index, data, ...) hold action subcommands; every action
// builds an operation and hands it to the session, which resolves the
// connection, runs the safety gate, dials the backend, and renders the
// envelope.
//
// # Global Options
//
// All commands support global flags:
//   - --uri, -u: Milvus server URI
//   - --token, -t: authentication token
//   - --db: database name
//   - --profile, -p: connection profile to apply
//   - --mode: agent or human output mode
//   - --output, -o: json, yaml, or table
//   - --force: skip confirmation prompts
//   - --quiet, -q: suppress informational output
//   - --debug: enable debug logging
//
// # Example Usage
//
//	yami connect http://localhost:19530           # Check connectivity
//	yami collection create demo --dim 128         # Quick-create a collection
//	yami data insert demo -d '{"id":1,...}'       # Insert inline rows
//	yami --mode agent collection list             # Structured envelope output
//	yami sandbox up                               # Local Milvus in Docker
//
// # Exit Codes
//
// Invocations exit 0 on success, 1 when a dispatched operation fails
// (the error envelope is still rendered), and 2 on usage errors before
// any backend call.
package cmd
