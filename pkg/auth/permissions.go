package auth

// Capability keys consulted by the authorization gate. Each mutating operation
// names exactly one key at its boundary; how the keys are granted and stored is
// external to this service.
const (
	PermManageCatalog  = "inventory.manage_catalog"
	PermAdjustStock    = "inventory.adjust_stock"
	PermTransferStock  = "inventory.transfer_stock"
	PermReceiveStock   = "inventory.receive_stock"
	PermCreateRequest  = "inventory.create_request"
	PermApproveRequest = "inventory.approve_request"
	PermRejectRequest  = "inventory.reject_request"
	PermDeliverRequest = "inventory.deliver_request"
	PermConfirmReceipt = "inventory.confirm_receipt"
	PermCancelRequest  = "inventory.cancel_request"
)

// AllPermissions lists every capability key the service understands
var AllPermissions = []string{
	PermManageCatalog,
	PermAdjustStock,
	PermTransferStock,
	PermReceiveStock,
	PermCreateRequest,
	PermApproveRequest,
	PermRejectRequest,
	PermDeliverRequest,
	PermConfirmReceipt,
	PermCancelRequest,
}
