package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/favcart/internal/logging"
	authmw "github.com/Skotchmaster/favcart/internal/middleware/auth"
	"github.com/Skotchmaster/favcart/internal/mykafka"
	"github.com/Skotchmaster/favcart/internal/service"
	"github.com/Skotchmaster/favcart/internal/transport"
)

type CartHTTP struct {
	Svc      *service.CartService
	Producer mykafka.Publisher
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	items, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return serviceError(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartView(items))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	var req transport.AddToCartRequest
	if err := bindJSON(c, &req); err != nil {
		l.Warn("bind_error", "status", http.StatusBadRequest, "error", err)
		return err
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("invalid_product_id", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	items, err := h.Svc.AddItem(ctx, userID, productID, qty)
	if err != nil {
		return serviceError(l, "add_to_cart_error", err)
	}

	publish(c, h.Producer, mykafka.TopicCartEvents, userID.String(), map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
		"quantity":  qty,
	})
	return c.JSON(http.StatusOK, transport.CartResponse{
		Message: "Product added to cart",
		Cart:    transport.NewCartView(items),
	})
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		l.Warn("invalid_product_id", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	items, err := h.Svc.RemoveItem(ctx, userID, productID)
	if err != nil {
		return serviceError(l, "remove_from_cart_error", err)
	}

	publish(c, h.Producer, mykafka.TopicCartEvents, userID.String(), map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})
	return c.JSON(http.StatusOK, transport.CartResponse{
		Message: "Product removed from cart",
		Cart:    transport.NewCartView(items),
	})
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	var req transport.UpdateCartRequest
	if err := bindJSON(c, &req); err != nil {
		l.Warn("bind_error", "status", http.StatusBadRequest, "error", err)
		return err
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("invalid_product_id", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Svc.SetQuantity(ctx, userID, productID, *req.Quantity); err != nil {
		return serviceError(l, "update_quantity_error", err)
	}

	publish(c, h.Producer, mykafka.TopicCartEvents, userID.String(), map[string]any{
		"type":      "cart_quantity_set",
		"userID":    userID,
		"productID": productID,
		"quantity":  *req.Quantity,
	})
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Cart updated"})
}
