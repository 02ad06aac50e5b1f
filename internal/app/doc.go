// Package app contains the core application logic. It defines the App struct,
// its configuration and the compile lifecycle for a single template, a whole
// source directory or a live preview server, decoupled from the CLI entrypoint.
package app
