package http

// AdjustStock godoc
// @Summary Adjust stock to a counted quantity
// @Description Set the balance of an item at a location to a stated count, recording an ADJUSTMENT movement for the delta
// @Tags Ledger
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_id=int,location=object{location_type=string,location_id=int},new_quantity=int,reason=string,notes=string} true "Adjustment data"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /api/stock/adjust [post]
func (h *StockHandler) AdjustStockDoc() {}

// TransferStock godoc
// @Summary Transfer stock between locations
// @Description Move a quantity from one location to another atomically; fails with 422 when the source balance is insufficient
// @Tags Ledger
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_id=int,from=object{location_type=string,location_id=int},to=object{location_type=string,location_id=int},quantity=int,reason=string,notes=string} true "Transfer data"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 422 {object} object{error=string}
// @Router /api/stock/transfer [post]
func (h *StockHandler) TransferStockDoc() {}

// ReceiveStock godoc
// @Summary Receive stock into a location
// @Description Record a goods receipt, increasing the balance and writing an IN movement
// @Tags Ledger
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_id=int,location=object{location_type=string,location_id=int},quantity=int,reason=string,notes=string} true "Receipt data"
// @Success 201 {object} object{success=bool,data=object}
// @Failure 400 {object} object{error=string}
// @Router /api/stock/receive [post]
func (h *StockHandler) ReceiveStockDoc() {}

// GetStock godoc
// @Summary Read stock balances for an item
// @Description Read the balance at one location, or across all locations holding the item
// @Tags Ledger
// @Produce json
// @Param item_id path int true "Item ID"
// @Param location_type query string false "WAREHOUSE, VEHICLE or SITE"
// @Param location_id query int false "Location ID"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/stock/{item_id} [get]
func (h *StockHandler) GetStockDoc() {}

// ListMovements godoc
// @Summary List ledger movements
// @Description Page through the movement log, newest first, with item, type, location and time filters
// @Tags Ledger
// @Produce json
// @Param item_id query int false "Item filter"
// @Param type query string false "IN, OUT, TRANSFER or ADJUSTMENT"
// @Param location_type query string false "Location type filter"
// @Param location_id query int false "Location ID filter"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} object{success=bool,data=array,meta=object}
// @Router /api/movements [get]
func (h *StockHandler) ListMovementsDoc() {}
