// Package api provides the HTTP handlers for the review scheduler: deck
// management, review sessions, authentication, and the media-library
// catalog passthrough. Handlers decode and validate requests, delegate to
// the service layer, and translate service errors into sanitized JSON
// responses.
package api
