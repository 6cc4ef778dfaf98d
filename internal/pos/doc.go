// Package pos holds a single store's working data in memory and keeps it
// synchronised with a persistence adapter.
//
// # Transactions
//
// Every public mutation is one transaction: it runs under the Store mutex,
// builds the next state copy-on-write, persists every touched collection
// with a single atomic Adapter.SaveAll, and only then publishes the new
// state. If persisting fails the in-memory state is unchanged and the
// caller receives a PERSIST_FAILED error.
//
// # Commits
//
// CommitInvoice prepends the invoice, deducts each item's quantity from the
// matching product and accrues the customer's totals and points.
// CommitStockLog prepends the log and applies its signed change to the
// product. Missing products or customers are skipped silently; invoices
// and logs are historical snapshots and commit regardless.
//
// The core never checks stock availability. Checkout, the cart-level
// helper, does when stock enforcement is enabled (the default).
//
// # Read model
//
// Snapshot and the per-collection getters return deep copies. Subscribe
// registers a callback that receives a fresh snapshot after every
// committed transaction.
package pos
