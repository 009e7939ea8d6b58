// Package orders provides the persistence layer for cart orders.
//
// # Overview
//
// Repository defines per-user CRUD over Order rows; every call carries the
// owning user id so one user can never read or change another user's rows.
// SQLiteRepository implements it over a dbx.DBTX (either *sql.DB or *sql.Tx).
//
// # Failover
//
// Store wraps the on-disk database. Operations run through Store.Do or
// Store.DoTx; when the disk database reports that it is closed or malformed
// (see dbx.IndicatesCorruption) the store opens an in-memory SQLite database
// with the same schema, switches to it for the rest of the process lifetime
// and retries the operation once. The disk file is left untouched so its
// data can be recovered later.
//
// Typical Usage
//
//	store := orders.NewStore(db, log, collector)
//	err := store.Do(ctx, "list", func(ctx context.Context, r orders.Repository) error {
//	    list, err = r.List(ctx, userID, models.FilterPending)
//	    return err
//	})
package orders
