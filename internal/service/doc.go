// Package service holds the use cases of the users service: resolving an
// external identity to a user, reading, searching and updating profiles,
// and managing a user's interests.
//
// Services depend on the store interfaces and on store.Transactor, never on a
// concrete database. Every operation that acts on behalf of a caller takes the
// resolved actor ID and passes it through the authorization guard before
// touching the store. Store errors are translated into the domain error
// taxonomy here so the API layer only ever sees domain sentinels.
package service
