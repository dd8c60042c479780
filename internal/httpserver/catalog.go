package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
)

func listProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := parseProductQuery(c)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		page, err := svc.List(c.Request.Context(), q)
		if err != nil {
			if errors.Is(err, productsvc.ErrInvalidQuery) {
				writeError(c, http.StatusBadRequest, err.Error())
				return
			}
			writeError(c, http.StatusInternalServerError, "failed to list products")
			return
		}
		out := productPageView{Results: make([]productView, 0, len(page.Results)), Total: page.Total, Limit: page.Limit, Offset: page.Offset}
		for _, p := range page.Results {
			out.Results = append(out.Results, toProductView(p))
		}
		c.JSON(http.StatusOK, out)
	}
}

func getProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(c, http.StatusNotFound, "product not found")
				return
			}
			writeError(c, http.StatusInternalServerError, "failed to load product")
			return
		}
		c.JSON(http.StatusOK, toProductView(*p))
	}
}

func listCategoriesHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, http.StatusInternalServerError, "failed to list categories")
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": cats, "total": len(cats)})
	}
}

func parseProductQuery(c *gin.Context) (productsvc.Query, error) {
	q := productsvc.Query{
		CategoryKey: c.Query("category"),
		Text:        c.Query("q"),
		Sort:        c.Query("sort"),
	}
	var err error
	if q.MinPriceCents, err = optionalInt64(c, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPriceCents, err = optionalInt64(c, "maxPrice"); err != nil {
		return q, err
	}
	if q.Limit, err = optionalInt(c, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = optionalInt(c, "offset"); err != nil {
		return q, err
	}
	return q, nil
}

func optionalInt64(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.New(name + " must be an integer amount in cents")
	}
	return &v, nil
}

func optionalInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}
