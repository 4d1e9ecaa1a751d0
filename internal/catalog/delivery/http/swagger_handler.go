package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreateItem godoc
// @Summary Create a catalog item
// @Description Add a new item to the company catalog
// @Tags Catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{code=string,name=string,category=string,unit=string,unit_cost_cents=int,min_stock=int,max_stock=int} true "Item data"
// @Success 201 {object} object{success=bool,data=object}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /api/items [post]
func (h *ItemHandler) CreateItemDoc() {}

// UpdateItem godoc
// @Summary Update a catalog item
// @Description Update the mutable fields of an item; omitted fields are left untouched
// @Tags Catalog
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body object{name=string,category=string,unit=string,unit_cost_cents=int,min_stock=int,max_stock=int,active=bool} true "Fields to update"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{error=string}
// @Router /api/items/{id} [patch]
func (h *ItemHandler) UpdateItemDoc() {}

// DeleteItem godoc
// @Summary Delete a catalog item
// @Description Remove an item; items with stock or movement history are rejected with a conflict
// @Tags Catalog
// @Security BearerAuth
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /api/items/{id} [delete]
func (h *ItemHandler) DeleteItemDoc() {}

// GetItem godoc
// @Summary Get a catalog item
// @Tags Catalog
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{error=string}
// @Router /api/items/{id} [get]
func (h *ItemHandler) GetItemDoc() {}

// ListItems godoc
// @Summary List catalog items
// @Description List items with optional search, category and active filters
// @Tags Catalog
// @Produce json
// @Param search query string false "Match against code or name"
// @Param category query string false "Category filter"
// @Param active query bool false "Active filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} object{success=bool,data=array,meta=object}
// @Router /api/items [get]
func (h *ItemHandler) ListItemsDoc() {}
