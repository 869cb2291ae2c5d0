// Package milvus wraps the Milvus Go SDK behind the narrow Backend
// interface the command layer depends on. It owns connection dialing,
// translation of transport and server faults into the CLI error
// taxonomy, the JSON row codec for writes, and flattening of search
// and query results into row maps ready for rendering.
package milvus
