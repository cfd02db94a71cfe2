package api

import (
	"net/http"
	"strconv"
	"time"

	"commerce-service/internal/apperr"
	"commerce-service/internal/dto"
	"commerce-service/internal/models"
	"commerce-service/internal/service"
	"commerce-service/internal/store"
	"commerce-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler contains HTTP handlers
type Handler struct {
	products  *service.ProductService
	users     *service.UserService
	carts     *service.CartService
	purchases *service.PurchaseService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	products *service.ProductService,
	users *service.UserService,
	carts *service.CartService,
	purchases *service.PurchaseService,
) *Handler {
	return &Handler{
		products:  products,
		users:     users,
		carts:     carts,
		purchases: purchases,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", h.createProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)

		v1.POST("/users", h.registerUser)
		v1.POST("/users/login", h.login)
		v1.GET("/users", h.listUsers)
		v1.GET("/users/:id", h.getUser)
		v1.PUT("/users/:id", h.updateUser)
		v1.DELETE("/users/:id", h.deleteUser)
		v1.POST("/users/:id/documents", h.addDocument)
		v1.POST("/users/:id/premium", h.upgradeToPremium)
		v1.POST("/users/password-reset", h.requestPasswordReset)
		v1.POST("/users/password-reset/confirm", h.resetPassword)

		v1.POST("/carts", h.createCart)
		v1.GET("/carts/:id", h.getCart)
		v1.POST("/carts/:id/products/:pid", h.addCartLine)
		v1.DELETE("/carts/:id/products/:pid", h.removeCartLine)
		v1.PUT("/carts/:id", h.replaceCartLines)
		v1.DELETE("/carts/:id", h.clearCart)
		v1.POST("/carts/:id/purchase", h.purchase)

		v1.GET("/tickets", h.listTickets)
		v1.GET("/tickets/:id", h.getTicket)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts handles paginated catalog listing
func (h *Handler) listProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.products.ListProducts(c.Request.Context(), store.ProductListOptions{
		Limit:    limit,
		Page:     page,
		Sort:     c.Query("sort"),
		Category: c.Query("category"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	list := dto.NewProductList(result)
	c.JSON(http.StatusOK, gin.H{"status": "success", "payload": list})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, dto.NewProduct(product))
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusCreated, dto.NewProduct(product))
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	var update models.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), id, &update)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, dto.NewProduct(product))
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "product deleted"})
}

func (h *Handler) registerUser(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusCreated, dto.NewUser(user))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login validates credentials and refreshes the last connection timestamp.
// Session/token issuance lives in the auth middleware, not here.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	user, err := h.users.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	user, err = h.users.UpdateLastConnection(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, dto.NewUser(user))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, dto.NewUserList(users))
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, dto.NewUser(user))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	var update models.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), id, &update)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, dto.NewUser(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "user deleted"})
}

type addDocumentRequest struct {
	Name      string `json:"name" binding:"required"`
	Reference string `json:"reference" binding:"required"`
}

func (h *Handler) addDocument(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req addDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	user, err := h.users.AddDocument(c.Request.Context(), id, req.Name, req.Reference)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, dto.NewUser(user))
}

func (h *Handler) upgradeToPremium(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.UpgradeToPremium(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, dto.NewUser(user))
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *Handler) requestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	if err := h.users.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "if the account exists, a reset email has been sent"})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "password updated"})
}

type createCartRequest struct {
	UserID string `json:"user_id"`
}

// createCart provisions a standalone cart. Registration already creates one
// per user, so the owner reference here is optional.
func (h *Handler) createCart(c *gin.Context) {
	req := createCartRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.Validation("invalid request body"))
			return
		}
	}

	userID := primitive.NilObjectID
	if req.UserID != "" {
		parsed, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			writeError(c, apperr.Validation("invalid user id"))
			return
		}
		userID = parsed
	}

	cart, err := h.carts.CreateCart(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusCreated, cart)
}

func (h *Handler) getCart(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	resolved, err := h.carts.GetCart(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, dto.NewCart(resolved))
}

type addLineRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) addCartLine(c *gin.Context) {
	cartID, ok := objectID(c, "id")
	if !ok {
		return
	}
	productID, ok := objectID(c, "pid")
	if !ok {
		return
	}

	req := addLineRequest{Quantity: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.Validation("invalid request body"))
			return
		}
	}

	cart, err := h.carts.AddLine(c.Request.Context(), cartID, productID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, cart)
}

func (h *Handler) removeCartLine(c *gin.Context) {
	cartID, ok := objectID(c, "id")
	if !ok {
		return
	}
	productID, ok := objectID(c, "pid")
	if !ok {
		return
	}

	cart, err := h.carts.RemoveLine(c.Request.Context(), cartID, productID)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, cart)
}

type replaceLinesRequest struct {
	Lines []models.CartLine `json:"lines" binding:"required"`
}

func (h *Handler) replaceCartLines(c *gin.Context) {
	cartID, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req replaceLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	cart, err := h.carts.ReplaceLines(c.Request.Context(), cartID, req.Lines)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, cart)
}

func (h *Handler) clearCart(c *gin.Context) {
	cartID, ok := objectID(c, "id")
	if !ok {
		return
	}

	cart, err := h.carts.Clear(c.Request.Context(), cartID)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, cart)
}

type purchaseRequest struct {
	Purchaser string `json:"purchaser" binding:"required"`
}

func (h *Handler) purchase(c *gin.Context) {
	cartID, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	result, err := h.purchases.Purchase(c.Request.Context(), cartID, req.Purchaser)
	if err != nil {
		// A failed purchase still reports which lines could not be bought.
		if result != nil {
			c.JSON(apperr.StatusOf(err), gin.H{
				"status": "error",
				"error": gin.H{
					"type":    apperr.KindOf(err),
					"message": apperr.MessageOf(err),
				},
				"failed_lines": result.FailedLines,
			})
			return
		}
		writeError(c, err)
		return
	}

	response := gin.H{
		"status":       "success",
		"failed_lines": result.FailedLines,
	}
	if result.Ticket != nil {
		response["ticket"] = dto.NewTicket(result.Ticket)
	}
	c.JSON(http.StatusOK, response)
}

// listTickets returns the purchase history for a purchaser email
func (h *Handler) listTickets(c *gin.Context) {
	purchaser := c.Query("purchaser")
	if purchaser == "" {
		writeError(c, apperr.Validation("purchaser query parameter is required"))
		return
	}

	tickets, err := h.purchases.ListTickets(c.Request.Context(), purchaser)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]*dto.Ticket, 0, len(tickets))
	for i := range tickets {
		out = append(out, dto.NewTicket(&tickets[i]))
	}
	writeSuccess(c, http.StatusOK, out)
}

func (h *Handler) getTicket(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.purchases.GetTicket(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	writeSuccess(c, http.StatusOK, dto.NewTicket(ticket))
}

func objectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		writeError(c, apperr.Validation("invalid id"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func writeSuccess(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, gin.H{"status": "success", "payload": payload})
}

func writeError(c *gin.Context, err error) {
	c.JSON(apperr.StatusOf(err), gin.H{
		"status": "error",
		"error": gin.H{
			"type":    apperr.KindOf(err),
			"message": apperr.MessageOf(err),
		},
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
