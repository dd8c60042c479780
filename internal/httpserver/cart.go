package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity"`
	Variant   string `json:"variant"`
}

type updateItemRequest struct {
	Quantity *int    `json:"quantity"`
	Variant  *string `json:"variant"`
}

func getCartHandler(c *gin.Context) {
	c.JSON(http.StatusOK, toCartView(sessionFrom(c).Cart.Snapshot()))
}

func clearCartHandler(c *gin.Context) {
	sess := sessionFrom(c)
	sess.Cart.Clear(c.Request.Context())
	c.JSON(http.StatusOK, toCartView(sess.Cart.Snapshot()))
}

func addCartItemHandler(products ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid body")
			return
		}
		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}

		product, err := products.Get(c.Request.Context(), req.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(c, http.StatusNotFound, "product not found")
				return
			}
			writeError(c, http.StatusInternalServerError, "failed to load product")
			return
		}

		sess := sessionFrom(c)
		if err := sess.Cart.Add(c.Request.Context(), *product, qty, req.Variant); err != nil {
			if errors.Is(err, domain.ErrInvalidQuantity) {
				writeError(c, http.StatusBadRequest, err.Error())
				return
			}
			writeError(c, http.StatusInternalServerError, "failed to add item")
			return
		}
		c.JSON(http.StatusCreated, toCartView(sess.Cart.Snapshot()))
	}
}

// updateCartItemHandler applies a quantity and/or variant change. Unknown ids
// leave the cart untouched.
func updateCartItemHandler(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Quantity == nil && req.Variant == nil {
		writeError(c, http.StatusBadRequest, "quantity or variant required")
		return
	}

	sess := sessionFrom(c)
	ctx := c.Request.Context()
	id := c.Param("id")
	if req.Variant != nil {
		productID := ""
		for _, it := range sess.Cart.Items() {
			if it.ID == id {
				productID = it.Product.ID
			}
		}
		sess.Cart.UpdateVariant(ctx, id, *req.Variant)
		id = survivingLine(sess.Cart.Items(), id, productID, *req.Variant)
	}
	if req.Quantity != nil {
		sess.Cart.UpdateQuantity(ctx, id, *req.Quantity)
	}
	c.JSON(http.StatusOK, toCartView(sess.Cart.Snapshot()))
}

func removeCartItemHandler(c *gin.Context) {
	sess := sessionFrom(c)
	sess.Cart.Remove(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, toCartView(sess.Cart.Snapshot()))
}

// A variant change may fold the line into an older one; a quantity sent
// with it then applies to the surviving line.
func survivingLine(items []domain.CartItem, id, productID, variant string) string {
	for _, it := range items {
		if it.ID == id {
			return id
		}
	}
	for _, it := range items {
		if it.Product.ID == productID && it.Variant == variant {
			return it.ID
		}
	}
	return id
}
