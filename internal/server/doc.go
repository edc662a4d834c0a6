// Package server exposes the movie catalog over a JSON HTTP API built on chi.
//
// # Routes
//
//	GET    /health                              database reachability
//	GET    /api/movies?q=                       list or search movies with their associations
//	POST   /api/movies                          create a movie and its associations in one transaction
//	POST   /api/movies/import                   bulk import a YAML catalog
//	GET    /api/movies/{id}                     one movie with its associations
//	PUT    /api/movies/{id}                     update scalars and replace the listed association kinds
//	DELETE /api/movies/{id}                     cascade delete (associations, reviews, movie)
//	PUT    /api/movies/{id}/associations        replace-all for the listed kinds
//	GET    /api/movies/{id}/reviews             reviews, newest first
//	POST   /api/movies/{id}/reviews             add a review
//	GET    /api/references/{kind}               list genres, directors, actors or studios
//	POST   /api/references/{kind}               resolve-or-create by name
//	PATCH  /api/references/{kind}/{id}          rename
//	DELETE /api/references/{kind}/{id}          delete an unused reference
//	GET    /api/users                           list users
//	POST   /api/users                           add a user
//	DELETE /api/users/{id}                      delete a user and their reviews
//
// # Association bodies
//
// Movie and association bodies carry "genres", "directors", "actors" and "studios" lists. A missing key leaves
// that kind untouched while an empty list clears it.
//
// # Errors
//
// Failures are written as {"error": "..."}. Validation and malformed input map to 400, missing rows to 404,
// constraint violations to 409. Anything else is logged with the request id and answered with a bare 500.
//
// # Middleware
//
// [Middleware] wraps handlers in reverse order (last added executes first). Every request passes through chi's
// Recoverer, [RequestID] and [RequestLogger].
package server
