// Package repositories implements SQLite persistence for the movie catalog.
//
// Every repository is bound to a [DBTX], which is either the *sql.DB (autocommit) or a *sql.Tx, so the
// same code runs standalone or inside a caller's transaction. [InTx] owns the transaction boundary:
// it commits when the callback succeeds and rolls back before returning any error.
//
// Key Implementations:
//   - [MovieRepository] : movie rows, insert-or-update by id, title lookups
//   - [ReferenceRepository] : genre/director/actor/studio dictionaries with resolve-or-create
//   - [AssociationRepository] : the four movie join tables, replaced as whole sets
//   - [ReviewRepository] : reviews with the reviewer's email
//   - [UserRepository] : catalog users
//
// All statements are parameterized. Table names are never taken from input; they come from a fixed
// per-kind table map. Driver errors are classified into the shared taxonomy: unique, primary key, foreign
// key, check and not-null failures wrap shared.ErrConstraint, missing rows wrap shared.ErrNotFound and everything else wraps shared.ErrPersistence.
package repositories
