// Package services implements [Catalog], the transactional movie catalog used by every caller.
//
// # Replace-all
//
// [Catalog.ReplaceAll] and [Catalog.Save] make a movie's stored associations equal a desired set per
// kind ([models.Associations]). A kind present in the map is replaced in full (an empty list clears it);
// an absent kind is left alone. For each present kind the names are deduplicated, resolved to reference
// ids (created on demand), the old join rows are deleted and the new ones inserted.
//
// Every kind, and for Save the movie row as well, is written inside one transaction. If any name fails to
// resolve or any statement fails, the transaction is rolled back before the error is returned, so a
// caller never sees one kind updated and another not.
//
// # Deletion
//
// [Catalog.DeleteMovie] removes the four association kinds and the movie's reviews before the movie row,
// in one transaction. Referential integrity does not rely on ON DELETE CASCADE.
//
// # Errors
//
// Errors wrap one of shared.ErrValidation, shared.ErrNotFound, shared.ErrConstraint or
// shared.ErrPersistence and are matched with [errors.Is].
package services
