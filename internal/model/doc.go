// Package model defines the records a single store keeps: products,
// customers, invoices, stock adjustments and settings.
//
// Invoices and stock logs are historical snapshots. They carry copies of
// product and customer fields taken at commit time and hold only
// non-owning references (ProductID, CustomerID) that may dangle after the
// referenced record is deleted.
//
// The JSON field names match the persisted and exported document layout,
// so a backup written by an older version decodes without migration.
package model
