package model

import "time"

// Product is a sellable item.
//
// Quantity may go negative: commits deduct stock without an availability
// check, see pos.Store.CommitInvoice.
type Product struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	BuyPrice    float64 `json:"buyPrice"`
	SellPrice   float64 `json:"sellPrice"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	MinQuantity *int    `json:"minQuantity,omitempty"`
}

// Customer is a registered buyer. TotalSpent, Points and PurchaseCount only
// ever grow through invoice accrual.
type Customer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	TotalSpent    float64   `json:"totalSpent"`
	Points        float64   `json:"points"`
	PurchaseCount int       `json:"purchaseCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// InvoiceItem is one line of an invoice, frozen at sale time.
type InvoiceItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	BuyPrice  float64 `json:"buyPrice"`
	Quantity  int     `json:"quantity"`
}

// Invoice is the immutable record of a completed sale. Items keep checkout
// order; Total and TotalProfit are computed once by the caller.
type Invoice struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customerId,omitempty"`
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone,omitempty"`
	Items         []InvoiceItem `json:"items"`
	Total         float64       `json:"total"`
	TotalProfit   float64       `json:"totalProfit"`
	Date          time.Time     `json:"date"`
}

// Reason classifies a non-sale stock change.
type Reason string

const (
	ReasonDamage  Reason = "damage"
	ReasonTheft   Reason = "theft"
	ReasonExpired Reason = "expired"
	ReasonError   Reason = "error"
	ReasonOther   Reason = "other"
)

// Reasons lists every valid Reason in display order.
var Reasons = []Reason{ReasonDamage, ReasonTheft, ReasonExpired, ReasonError, ReasonOther}

// Valid reports whether r is one of Reasons.
func (r Reason) Valid() bool {
	for _, v := range Reasons {
		if r == v {
			return true
		}
	}
	return false
}

// StockLog is an audit entry for an inventory change that is not a sale.
// Change is signed: negative is a loss, positive a surplus.
type StockLog struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Reason      Reason    `json:"reason"`
	Change      int       `json:"change"`
	Date        time.Time `json:"date"`
}

// Settings is the store-wide configuration. PointsPerCurrency converts an
// invoice total into loyalty points.
type Settings struct {
	StoreName         string  `json:"storeName"`
	Phone             string  `json:"phone"`
	Email             string  `json:"email"`
	Address           string  `json:"address"`
	WhatsappGroup     string  `json:"whatsappGroup"`
	FacebookPage      string  `json:"facebookPage"`
	PointsPerCurrency float64 `json:"pointsPerCurrency"`
	Logo              string  `json:"logo,omitempty"`
}

// DefaultStoreName is the store name used until settings are saved.
const DefaultStoreName = "متجرنا"

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		StoreName:         DefaultStoreName,
		PointsPerCurrency: 0.1,
	}
}

// Snapshot is a point-in-time copy of all five collections.
// Invoices and StockLogs are newest first.
type Snapshot struct {
	Products  []Product  `json:"products"`
	Customers []Customer `json:"customers"`
	Invoices  []Invoice  `json:"invoices"`
	StockLogs []StockLog `json:"stockLogs"`
	Settings  Settings   `json:"settings"`
}

// Backup is the export/import document. A nil field means the key was
// absent (or null) and is left untouched on import.
type Backup struct {
	Settings  *Settings  `json:"settings"`
	Products  []Product  `json:"products"`
	Customers []Customer `json:"customers"`
	Invoices  []Invoice  `json:"invoices"`
	StockLogs []StockLog `json:"stockLogs"`
}

// Empty reports whether the backup names no collection at all.
func (b Backup) Empty() bool {
	return b.Settings == nil && b.Products == nil && b.Customers == nil &&
		b.Invoices == nil && b.StockLogs == nil
}
