// Package api exposes the users service over HTTP. Handlers decode and
// validate requests, call the services with the actor resolved by the
// middleware, and map domain errors to status codes via HandleAPIError.
package api
