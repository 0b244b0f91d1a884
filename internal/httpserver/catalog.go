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

type CatalogHTTP struct {
	Svc      *service.CatalogService
	Producer mykafka.Publisher
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list")

	products, err := h.Svc.ListProducts(ctx)
	if err != nil {
		return serviceError(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewProductViews(products))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("invalid_product_id", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return serviceError(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewProductView(p))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	var req transport.ProductRequest
	if err := bindJSON(c, &req); err != nil {
		l.Warn("bind_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	p, err := h.Svc.CreateProduct(ctx, userID, productInput(req))
	if err != nil {
		return serviceError(l, "create_product_error", err)
	}

	publish(c, h.Producer, mykafka.TopicProductEvents, p.ID.String(), map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"sellerID":  userID,
	})
	l.Info("product_created", "product_id", p.ID)

	return c.JSON(http.StatusCreated, transport.ProductResponse{
		Message: "Product added successfully",
		Product: transport.NewProductView(p),
	})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("invalid_product_id", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req transport.ProductRequest
	if err := bindJSON(c, &req); err != nil {
		l.Warn("bind_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	p, err := h.Svc.UpdateProduct(ctx, userID, id, productInput(req))
	if err != nil {
		return serviceError(l, "update_product_error", err)
	}

	publish(c, h.Producer, mykafka.TopicProductEvents, p.ID.String(), map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
	})
	return c.JSON(http.StatusOK, transport.ProductResponse{
		Message: "Product updated successfully",
		Product: transport.NewProductView(p),
	})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("invalid_product_id", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Svc.DeleteProduct(ctx, userID, id); err != nil {
		return serviceError(l, "delete_product_error", err)
	}

	publish(c, h.Producer, mykafka.TopicProductEvents, id.String(), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted successfully"})
}

func productInput(req transport.ProductRequest) service.ProductInput {
	in := service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Ratings != nil {
		in.Ratings = *req.Ratings
	}
	return in
}
