// Package delivery provides the ways a generated export reaches the user.
//
// HTTP streams the file to a browser as an attachment download, Directory
// saves it on disk for the CLI, and Recorder keeps it in memory for tests and
// dry runs. All three satisfy exporter.Deliverer.
package delivery
