package kafka

import "time"

// StockMovementEvent mirrors a committed ledger movement
type StockMovementEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Reference      string    `json:"reference"`
	MovementType   string    `json:"movement_type"`
	ItemID         uint      `json:"item_id"`
	Quantity       int64     `json:"quantity"`
	LocationType   string    `json:"location_type"`
	LocationID     uint      `json:"location_id"`
	ToLocationType string    `json:"to_location_type,omitempty"`
	ToLocationID   uint      `json:"to_location_id,omitempty"`
	Reason         string    `json:"reason"`
	RequestID      *uint     `json:"request_id,omitempty"`
	Actor          string    `json:"actor"`
	Timestamp      time.Time `json:"timestamp"`
}

// RequestTransitionEvent mirrors a committed request state transition
type RequestTransitionEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	RequestID     uint      `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	WorkOrderID   string    `json:"work_order_id"`
	ItemID        uint      `json:"item_id"`
	Status        string    `json:"status"`
	Urgency       string    `json:"urgency"`
	Timestamp     time.Time `json:"timestamp"`
}

// GoodsReceiptEvent is emitted by the purchasing system when ordered parts
// arrive at a location
type GoodsReceiptEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	ItemID       uint      `json:"item_id"`
	Quantity     int64     `json:"quantity"`
	LocationType string    `json:"location_type"`
	LocationID   uint      `json:"location_id"`
	PONumber     string    `json:"po_number"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeMovementRecorded = "movement.recorded"
	EventTypeGoodsReceived    = "stock.received"
)

// Kafka topics
const (
	TopicStockMovements   = "stock-movements"
	TopicRequestLifecycle = "inventory-requests"
	TopicGoodsReceipts    = "goods-receipts"
)
