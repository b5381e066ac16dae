package orders

const (
	// Single audit stream; consumers dispatch on the envelope event_type.
	TopicAudit = "floor.audit"
)

// Partition key = table_id, so the audit trail of one table stays ordered.
func PartitionKey(tableID string) []byte { return []byte(tableID) }
