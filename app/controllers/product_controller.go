package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/salesdash/app/services"
	"github.com/shashiranjanraj/salesdash/pkg/ctx"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

// Index handles GET /api/products?page=&limit=&search=.
func (pc *ProductController) Index(c *ctx.Context) {
	q, err := services.ParseProductQuery(
		c.DefaultQuery("page", strconv.Itoa(services.DefaultPage)),
		c.DefaultQuery("limit", strconv.Itoa(services.DefaultLimit)),
		c.Query("search"),
	)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}

	page, err := pc.service.List(c.Context(), q)
	if err != nil {
		if services.IsValidation(err) {
			c.Error(http.StatusBadRequest, err.Error())
			return
		}
		c.ServerError("Error fetching products", err)
		return
	}

	c.JSON(http.StatusOK, page)
}
