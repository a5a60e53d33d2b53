// Package services implements the request-level logic shared by the HTTP
// transport and the command line tool. Handlers decode input and pick a
// delivery target; services validate, apply configured defaults and call
// into the exporter.
//
// Services return *errors.APIError for failures the caller can fix, so the
// transport layer can convert them to RFC 7807 problem documents without
// inspecting them further.
package services
