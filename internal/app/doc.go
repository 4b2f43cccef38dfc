// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the load-and-resolve lifecycle that turns
// a directory of task documents into a queryable catalog, decoupled from
// any specific entrypoint like a CLI.
package app
