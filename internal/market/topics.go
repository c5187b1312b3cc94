package market

// All lifecycle events share one topic; the event type rides in the payload
// envelope and the x-event-type header.
const TopicOrderEvents = "order.events"

// Partition key = order_id, so events for one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
