package http

// CreateRequest godoc
// @Summary Create an inventory request
// @Description Open a PENDING request for parts against a work order
// @Tags Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{work_order_id=string,item_id=int,quantity=int,urgency=string,notes=string} true "Request data"
// @Success 201 {object} object{success=bool,data=object}
// @Failure 400 {object} object{error=string}
// @Router /api/requests [post]
func (h *RequestHandler) CreateRequestDoc() {}

// ApproveRequest godoc
// @Summary Approve a pending request
// @Description Approve a PENDING request, reserving stock at the chosen source location; the ledger withdrawal and the status flip commit together
// @Tags Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body object{approved_quantity=int,source_type=string,source_id=int,notes=string} true "Approval data"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 409 {object} object{error=string}
// @Failure 422 {object} object{error=string}
// @Router /api/requests/{id}/approve [post]
func (h *RequestHandler) ApproveRequestDoc() {}

// RejectRequest godoc
// @Summary Reject a pending request
// @Tags Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body object{notes=string} true "Review notes"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 409 {object} object{error=string}
// @Router /api/requests/{id}/reject [post]
func (h *RequestHandler) RejectRequestDoc() {}

// DeliverRequest godoc
// @Summary Mark an approved request as delivered
// @Tags Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body object{notes=string} false "Delivery notes"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 409 {object} object{error=string}
// @Router /api/requests/{id}/deliver [post]
func (h *RequestHandler) DeliverRequestDoc() {}

// ConfirmReceipt godoc
// @Summary Confirm receipt of a delivered request
// @Tags Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body object{notes=string} false "Receipt notes"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 409 {object} object{error=string}
// @Router /api/requests/{id}/receive [post]
func (h *RequestHandler) ConfirmReceiptDoc() {}

// CancelRequest godoc
// @Summary Cancel a request
// @Description Cancel a PENDING or APPROVED request; cancelling an approved request returns the reserved stock to its source
// @Tags Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body object{notes=string} true "Cancellation notes"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 409 {object} object{error=string}
// @Router /api/requests/{id}/cancel [post]
func (h *RequestHandler) CancelRequestDoc() {}

// GetRequest godoc
// @Summary Get a request
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{error=string}
// @Router /api/requests/{id} [get]
func (h *RequestHandler) GetRequestDoc() {}

// ListRequests godoc
// @Summary List requests
// @Description Page through requests with work order, item, status and urgency filters
// @Tags Requests
// @Produce json
// @Param work_order_id query string false "Work order filter"
// @Param item_id query int false "Item filter"
// @Param status query string false "Status filter"
// @Param urgency query string false "Urgency filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} object{success=bool,data=array,meta=object}
// @Router /api/requests [get]
func (h *RequestHandler) ListRequestsDoc() {}
