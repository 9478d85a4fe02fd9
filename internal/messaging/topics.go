package messaging

// TopicOrderReceived carries domain.OrderReceivedEvent payloads keyed by
// order id.
const TopicOrderReceived = "order.received"
