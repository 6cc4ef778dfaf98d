// Package harness runs YAML scenarios against a real Store.
//
// # Scenario Format
//
//	name: checkout_accrues_points
//	description: "What this scenario validates"
//	enforce_stock: true          # optional, default true
//	setup:
//	  - op: update_settings
//	    args: { storeName: "Corner", pointsPerCurrency: 0.5 }
//	  - op: add_product
//	    args: { id: p1, name: Tea, buyPrice: 6, sellPrice: 10, quantity: 5 }
//	flow:
//	  - op: checkout
//	    args:
//	      lines: [{ productId: p1, quantity: 2 }]
//	      customerName: Sara
//	      customerPhone: "0555"
//	    expect:
//	      result: { total: 20 }
//	  - op: adjust_stock
//	    args: { productId: p1, change: -1, reason: damage }
//	    fail_persist: true
//	    expect:
//	      error: PERSIST_FAILED
//	assertions:
//	  - type: count
//	    collection: invoices
//	    count: 1
//	  - type: record
//	    collection: products
//	    where: { id: p1 }
//	    expect: { quantity: 3 }
//	  - type: stock
//	    product: p1
//	    quantity: 3
//	  - type: customer
//	    phone: "0555"
//	    expect: { purchaseCount: 1, points: 10 }
//
// # Operations
//
// add_product, update_product, delete_product, add_customer,
// update_customer, delete_customer, commit_invoice, commit_stock_log,
// adjust_stock, checkout, update_settings, import and reset. Args are
// decoded into the operation's input type using the JSON field names.
//
// # Assertion Types
//
//   - count: number of records in a collection
//   - record: the single record matching where has the expected fields
//   - stock: a product's quantity
//   - customer: the first customer with the given phone has the expected fields
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory SQLite adapter, a deterministic clock
// (testutil.DeterministicClock) and sequential IDs, so traces and final
// state are identical across runs and can be compared to golden files.
package harness
