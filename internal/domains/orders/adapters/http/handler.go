// Package http exposes the order service over gin.
package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/order-desk-api/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/order-desk-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/order-desk-api/internal/shared/errors"
)

// IdempotencyKeyHeader lets clients retry /place without creating duplicates
// when durable placement is enabled.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	msgOrderPlaced    = "Order placed successfully"
	msgOrderCancelled = "Order cancelled successfully"
	msgAddressUpdated = "Delivery address updated successfully"
	msgNoOrdersFound  = "No orders found"
	msgOrderNotFound  = "Order not found"
	errPlaceOrder     = "Failed to place order"
	errFetchOrders    = "Failed to fetch order details"
	errFetchAllOrders = "Failed to fetch all orders"
	errCancelOrder    = "Failed to cancel order"
	errModifyAddress  = "Failed to update address"
)

// Handler wires HTTP transport with the orders service and placement orchestrator.
type Handler struct {
	service   orderports.Service
	placement orderports.PlacementOrchestrator
	logger    *slog.Logger
}

// NewHandler creates a Handler. A nil placement falls back to the service directly.
func NewHandler(service orderports.Service, placement orderports.PlacementOrchestrator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{service: service, placement: placement, logger: logger}
}

// Register mounts the order routes under /api/orders.
func (h *Handler) Register(r gin.IRouter) {
	group := r.Group("/api/orders")
	group.POST("/place", h.PlaceOrder)
	group.GET("/view/:email", h.ViewOrdersByEmail)
	group.GET("/view-all", h.ViewAllOrders)
	group.POST("/cancel", h.CancelOrder)
	group.POST("/modify-address", h.ModifyAddress)
}

// Post /api/orders/place
func (h *Handler) PlaceOrder(c *gin.Context) {
	var payload mapper.PlaceOrderRequest
	if !bindJSON(c, &payload) {
		return
	}
	req := orderports.PlacementRequest{
		Input:          mapper.ToPlaceOrderInput(payload),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	}
	order, err := h.placeOrder(c.Request.Context(), req)
	if err != nil {
		h.respondFailure(c, "place order", errPlaceOrder, err)
		return
	}
	c.JSON(nethttp.StatusCreated, gin.H{"message": msgOrderPlaced, "order": mapper.FromDomainOrder(order)})
}

func (h *Handler) placeOrder(ctx context.Context, req orderports.PlacementRequest) (*orderdomain.Order, error) {
	if h.placement != nil {
		return h.placement.PlaceOrder(ctx, req)
	}
	return h.service.PlaceOrder(ctx, req.Input)
}

// Get /api/orders/view/:email
func (h *Handler) ViewOrdersByEmail(c *gin.Context) {
	result, err := h.service.ViewOrdersByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.respondFailure(c, "view orders", errFetchOrders, err)
		return
	}
	if result.Outcome == orderports.OutcomeEmptyNotFound {
		c.JSON(nethttp.StatusNotFound, gin.H{"message": msgNoOrdersFound})
		return
	}
	c.JSON(nethttp.StatusOK, mapper.FromDomainOrders(result.Orders))
}

// Get /api/orders/view-all
func (h *Handler) ViewAllOrders(c *gin.Context) {
	result, err := h.service.ViewAllOrders(c.Request.Context())
	if err != nil {
		h.respondFailure(c, "view all orders", errFetchAllOrders, err)
		return
	}
	c.JSON(nethttp.StatusOK, mapper.FromDomainOrders(result.Orders))
}

// Post /api/orders/cancel
func (h *Handler) CancelOrder(c *gin.Context) {
	var payload mapper.CancelOrderRequest
	if !bindJSON(c, &payload) {
		return
	}
	order, err := h.service.CancelOrder(c.Request.Context(), payload.Email, payload.OrderID)
	if err != nil {
		h.respondMutationError(c, "cancel order", errCancelOrder, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": msgOrderCancelled, "order": mapper.FromDomainOrder(order)})
}

// Post /api/orders/modify-address
func (h *Handler) ModifyAddress(c *gin.Context) {
	var payload mapper.ModifyAddressRequest
	if !bindJSON(c, &payload) {
		return
	}
	order, err := h.service.ModifyAddress(c.Request.Context(), payload.Email, payload.OrderID, payload.NewAddress)
	if err != nil {
		h.respondMutationError(c, "modify address", errModifyAddress, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": msgAddressUpdated, "order": mapper.FromDomainOrder(order)})
}

// bindJSON decodes the body. An empty body decodes as an empty object; malformed
// JSON is answered with a 400 problem.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail("request body is not valid JSON"))
		return false
	}
	return true
}

func (h *Handler) respondMutationError(c *gin.Context, op, message string, err error) {
	if errors.Is(err, orderports.ErrNotFound) {
		c.JSON(nethttp.StatusNotFound, gin.H{"message": msgOrderNotFound})
		return
	}
	h.respondFailure(c, op, message, err)
}

func (h *Handler) respondFailure(c *gin.Context, op, message string, err error) {
	h.logger.ErrorContext(c.Request.Context(), "order request failed",
		slog.String("operation", op),
		slog.String("path", c.FullPath()),
		slog.String("error", err.Error()),
	)
	c.JSON(nethttp.StatusInternalServerError, gin.H{"error": message})
}
