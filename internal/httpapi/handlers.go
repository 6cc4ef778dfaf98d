package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/idartimm2-jpg/nezam/internal/backup"
	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/pos"
	"github.com/idartimm2-jpg/nezam/internal/report"
	"github.com/idartimm2-jpg/nezam/internal/whatsapp"
)

const dashboardSize = 5

// writeError maps Store errors onto HTTP statuses: caller input 400,
// stock shortfalls 409, everything else 500.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"code": "INTERNAL", "message": err.Error()}

	var verr *backup.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body["code"] = "INVALID_IMPORT"
		body["details"] = verr.Problems
	case pos.IsInsufficientStock(err):
		status = http.StatusConflict
		body["code"] = pos.CodeOf(err)
	case pos.IsValidationError(err):
		status = http.StatusBadRequest
		body["code"] = pos.CodeOf(err)
	case pos.IsPersistError(err):
		body["code"] = pos.CodeOf(err)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": body})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "BAD_REQUEST", "message": msg}})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": what + " not found"}})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, model.FilterProducts(s.store.Products(), c.Query("q")))
}

func (s *Server) addProduct(c *gin.Context) {
	var p model.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid product: "+err.Error())
		return
	}
	created, err := s.store.AddProduct(c.Request.Context(), p)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateProduct(c *gin.Context) {
	var p model.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid product: "+err.Error())
		return
	}
	p.ID = c.Param("id")
	ok, err := s.store.UpdateProduct(c.Request.Context(), p)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !ok {
		notFound(c, "product")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	ok, err := s.store.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !ok {
		notFound(c, "product")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listCustomers(c *gin.Context) {
	c.JSON(http.StatusOK, model.FilterCustomers(s.store.Customers(), c.Query("q")))
}

func (s *Server) addCustomer(c *gin.Context) {
	var in model.Customer
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid customer: "+err.Error())
		return
	}
	created, err := s.store.AddCustomer(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateCustomer(c *gin.Context) {
	var in model.Customer
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid customer: "+err.Error())
		return
	}
	in.ID = c.Param("id")
	ok, err := s.store.UpdateCustomer(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !ok {
		notFound(c, "customer")
		return
	}
	updated, _ := s.store.Customer(in.ID)
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCustomer(c *gin.Context) {
	ok, err := s.store.DeleteCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !ok {
		notFound(c, "customer")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) customerWhatsapp(c *gin.Context) {
	customer, ok := s.store.Customer(c.Param("id"))
	if !ok {
		notFound(c, "customer")
		return
	}
	msg := c.Query("message")
	if msg == "" {
		msg = whatsapp.PromotionMessage(s.store.Settings())
	}
	link, err := whatsapp.Link(customer.Phone, msg)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

func (s *Server) listInvoices(c *gin.Context) {
	invoices := model.FilterInvoices(s.store.Invoices(), c.Query("q"))
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		invoices = report.RecentInvoices(invoices, limit)
	}
	c.JSON(http.StatusOK, invoices)
}

func (s *Server) commitInvoice(c *gin.Context) {
	var inv model.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		badRequest(c, "invalid invoice: "+err.Error())
		return
	}
	committed, err := s.store.CommitInvoice(c.Request.Context(), inv)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, committed)
}

type checkoutResponse struct {
	Invoice  model.Invoice `json:"invoice"`
	Whatsapp string        `json:"whatsapp,omitempty"`
}

func (s *Server) checkout(c *gin.Context) {
	var req pos.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid checkout: "+err.Error())
		return
	}
	inv, err := s.store.Checkout(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	msg := whatsapp.ThankYouMessage(s.store.Settings(), inv.CustomerName, inv.Total)
	link, _ := whatsapp.Link(inv.CustomerPhone, msg)
	c.JSON(http.StatusCreated, checkoutResponse{Invoice: inv, Whatsapp: link})
}

func (s *Server) listStockLogs(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.StockLogs())
}

func (s *Server) commitStockLog(c *gin.Context) {
	var log model.StockLog
	if err := c.ShouldBindJSON(&log); err != nil {
		badRequest(c, "invalid stock log: "+err.Error())
		return
	}
	committed, err := s.store.CommitStockLog(c.Request.Context(), log)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, committed)
}

type adjustRequest struct {
	ProductID string       `json:"productId"`
	Change    int          `json:"change"`
	Reason    model.Reason `json:"reason"`
}

func (s *Server) adjustStock(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid adjustment: "+err.Error())
		return
	}
	log, err := s.store.AdjustStock(c.Request.Context(), req.ProductID, req.Change, req.Reason)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Settings())
}

func (s *Server) updateSettings(c *gin.Context) {
	var st model.Settings
	if err := c.ShouldBindJSON(&st); err != nil {
		badRequest(c, "invalid settings: "+err.Error())
		return
	}
	if err := s.store.UpdateSettings(c.Request.Context(), st); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) exportBackup(c *gin.Context) {
	data, err := backup.Marshal(backup.Export(s.store.Snapshot()))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+backup.FileName(s.now())+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) importBackup(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	b, err := backup.Parse(data)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.store.ImportAll(c.Request.Context(), b); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}

func (s *Server) reset(c *gin.Context) {
	if err := s.store.ResetAll(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

type statsResponse struct {
	Stats          report.Stats          `json:"stats"`
	TopProducts    []report.ProductSales `json:"topProducts"`
	RecentInvoices []model.Invoice       `json:"recentInvoices"`
	LowStock       []report.StockAlert   `json:"lowStock"`
}

func (s *Server) stats(c *gin.Context) {
	snap := s.store.Snapshot()
	c.JSON(http.StatusOK, statsResponse{
		Stats:          report.Summarize(snap),
		TopProducts:    report.TopProducts(snap.Invoices, dashboardSize),
		RecentInvoices: report.RecentInvoices(snap.Invoices, dashboardSize),
		LowStock:       report.LowStock(snap.Products),
	})
}

func (s *Server) salesXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, s.store.Snapshot()); err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sales_report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (s *Server) salesCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.WriteSalesCSV(&buf, s.store.Invoices()); err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sales_report.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
