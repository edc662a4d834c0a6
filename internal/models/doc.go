// Package models defines the movie catalog entities shared by the repositories, services and callers.
//
// The package contains three groups of types:
//
// 1. Catalog entities backed by a table row with a surrogate integer key
//   - [Movie] : scalar movie record (title, release date, duration, budget)
//   - [Reference] : a named Genre, Director, Actor or Studio
//   - [Review] : a user's rating of a movie
//   - [User] : a catalog user (no credentials are stored)
//
// 2. Association inputs for the replace-all operation
//   - [Kind] : the four relationship kinds
//   - [Associations] : desired names per kind; a kind missing from the map is left untouched
//   - [AssociationSet] : the wire form used by JSON and YAML callers, where a nil list means untouched
//
// 3. Read models assembled from several tables
//   - [MovieDetails] : a movie with its associated names
//   - [ReviewDetails] : a review with its author's email
//
// Entities validate their own scalar fields; validation failures wrap [shared.ErrValidation].
package models
