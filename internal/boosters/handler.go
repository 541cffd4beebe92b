package boosters

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// Handler manages booster HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}/price", h.updatePrice)

	r.Get("/collections", h.listCollections)
	r.Post("/collections", h.recordCollection)
	r.Get("/collections/{id}", h.showCollection)
	r.Put("/collections/{id}", h.updateCollection)

	r.Get("/school-fees", h.listSchoolFees)
	r.Post("/school-fees", h.recordSchoolFees)

	r.Get("/payments", h.listPayments)
	r.Post("/payments", h.recordPayment)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name+" ID")
		return 0, false
	}
	return id, true
}

func parseMoney(w http.ResponseWriter, field, raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", field+" must be a decimal number")
		return decimal.Decimal{}, false
	}
	return d, true
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context())
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name               string `json:"name" validate:"required"`
		UnitOfMeasure      string `json:"unit_of_measure" validate:"required"`
		CurrentMarketPrice string `json:"current_market_price"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.CreateProduct(r.Context(), AgricultureProduct{
		Name:               req.Name,
		UnitOfMeasure:      req.UnitOfMeasure,
		CurrentMarketPrice: shared.ParseAmount(req.CurrentMarketPrice),
	})
	if err != nil {
		h.logger.Error("create product failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}
	var req struct {
		Price string `json:"price"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	price, ok := parseMoney(w, "price", req.Price)
	if !ok {
		return
	}
	if err := h.service.UpdateProductPrice(r.Context(), id, price); err != nil {
		h.logger.Error("update product price failed", "error", err, "product_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) listCollections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	collections, total, err := h.service.Collections(r.Context(), shared.ListFilters{
		Page: page, Limit: limit, Search: q.Get("search"),
	})
	if err != nil {
		h.logger.Error("list collections failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"collections": collections,
		"pagination":  shared.NewPagination(page, limit, total),
	})
}

type collectionRequest struct {
	MemberID       int64  `json:"member_id" validate:"required,gt=0"`
	ProductID      int64  `json:"product_id" validate:"required,gt=0"`
	Quantity       string `json:"quantity" validate:"required"`
	UnitPrice      string `json:"unit_price" validate:"required"`
	TotalValue     string `json:"total_value"`
	CollectionDate string `json:"collection_date"`
	Location       string `json:"location"`
	QualityGrade   string `json:"quality_grade"`
	ReceiptNumber  string `json:"receipt_number"`
}

func (h *Handler) recordCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	quantity, ok := parseMoney(w, "quantity", req.Quantity)
	if !ok {
		return
	}
	unitPrice, ok := parseMoney(w, "unit_price", req.UnitPrice)
	if !ok {
		return
	}
	c := AgricultureCollection{
		MemberID:      req.MemberID,
		ProductID:     req.ProductID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalValue:    shared.ParseAmount(req.TotalValue),
		Location:      req.Location,
		QualityGrade:  req.QualityGrade,
		ReceiptNumber: req.ReceiptNumber,
	}
	if req.CollectionDate != "" {
		if d, err := time.Parse("2006-01-02", req.CollectionDate); err == nil {
			c.CollectionDate = d
		}
	}
	created, err := h.service.RecordCollection(r.Context(), c)
	if err != nil {
		h.logger.Error("record collection failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) showCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collection")
	if !ok {
		return
	}
	c, err := h.service.Collection(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) updateCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collection")
	if !ok {
		return
	}
	var req struct {
		Quantity     string `json:"quantity" validate:"required"`
		UnitPrice    string `json:"unit_price" validate:"required"`
		Location     string `json:"location"`
		QualityGrade string `json:"quality_grade"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	quantity, ok := parseMoney(w, "quantity", req.Quantity)
	if !ok {
		return
	}
	unitPrice, ok := parseMoney(w, "unit_price", req.UnitPrice)
	if !ok {
		return
	}
	updated, err := h.service.UpdateCollection(r.Context(), id, quantity, unitPrice, req.Location, req.QualityGrade)
	if err != nil {
		h.logger.Error("update collection failed", "error", err, "collection_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) listSchoolFees(w http.ResponseWriter, r *http.Request) {
	memberID, _ := strconv.ParseInt(r.URL.Query().Get("member_id"), 10, 64)
	fees, err := h.service.SchoolFees(r.Context(), memberID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"school_fees": fees})
}

func (h *Handler) recordSchoolFees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID       int64  `json:"member_id" validate:"required,gt=0"`
		StudentName    string `json:"student_name" validate:"required"`
		SchoolName     string `json:"school_name" validate:"required"`
		EducationLevel string `json:"education_level"`
		Term           string `json:"term"`
		Amount         string `json:"amount" validate:"required"`
		CollectionDate string `json:"collection_date"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, ok := parseMoney(w, "amount", req.Amount)
	if !ok {
		return
	}
	c := SchoolFeesCollection{
		MemberID:       req.MemberID,
		StudentName:    req.StudentName,
		SchoolName:     req.SchoolName,
		EducationLevel: req.EducationLevel,
		Term:           req.Term,
		Amount:         amount,
	}
	if req.CollectionDate != "" {
		if d, err := time.Parse("2006-01-02", req.CollectionDate); err == nil {
			c.CollectionDate = d
		}
	}
	created, err := h.service.RecordSchoolFees(r.Context(), c)
	if err != nil {
		h.logger.Error("record school fees failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	memberID, _ := strconv.ParseInt(r.URL.Query().Get("member_id"), 10, 64)
	payments, err := h.service.Payments(r.Context(), memberID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID      int64  `json:"member_id" validate:"required,gt=0"`
		CollectionID  *int64 `json:"collection_id"`
		Amount        string `json:"amount" validate:"required"`
		PaymentStatus string `json:"payment_status"`
		PaymentMethod string `json:"payment_method"`
		PaymentDate   string `json:"payment_date"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, ok := parseMoney(w, "amount", req.Amount)
	if !ok {
		return
	}
	p := BoosterPayment{
		MemberID:      req.MemberID,
		CollectionID:  req.CollectionID,
		Amount:        amount,
		PaymentStatus: PaymentStatus(req.PaymentStatus),
		PaymentMethod: req.PaymentMethod,
	}
	if req.PaymentDate != "" {
		if d, err := time.Parse("2006-01-02", req.PaymentDate); err == nil {
			p.PaymentDate = d
		}
	}
	created, err := h.service.RecordPayment(r.Context(), p)
	if err != nil {
		h.logger.Error("record payment failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}
