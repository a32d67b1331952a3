package model

// InterfaceRecord is an immutable snapshot of a network interface as returned
// by the cloud API, flattened to the fields the classifier consumes.
type InterfaceRecord struct {
	ID               string
	VpcID            string
	SubnetID         string
	AvailabilityZone string
	InterfaceType    string
	Status           string
	MacAddress       string
	Description      string
	SecurityGroupIDs []string
	PrivateIPs       []string
	PublicIPs        []string
	Attachment       Attachment
	Tags             map[string]string
	RequesterID      string
	RequesterManaged bool
}

// Attachment holds the attachment metadata of an interface. InstanceID is
// empty when the interface is not attached to a compute instance.
type Attachment struct {
	ID         string `json:"attachment_id,omitempty"`
	InstanceID string `json:"instance_id,omitempty"`
	Status     string `json:"status,omitempty"`
	AttachTime string `json:"attach_time,omitempty"`
}

// Sentinel values used when classification cannot extract an identifier.
const (
	ResourceTypeUnknown = "unknown"
	ResourceIDNone      = "N/A"
)

// ResourceDescriptor is the classifier's verdict for one interface: which
// resource or managed service owns it.
type ResourceDescriptor struct {
	ResourceType     string            `json:"resource_type"`
	ResourceID       string            `json:"resource_id"`
	ResourceName     string            `json:"resource_name"`
	ResourceTags     map[string]string `json:"resource_tags"`
	RequesterID      string            `json:"requester_id"`
	RequesterManaged bool              `json:"requester_managed"`
	Group            string            `json:"group"`
}

// InterfaceItem is the persisted combination of an InterfaceRecord and its
// ResourceDescriptor, shaped like one row of the interface table.
type InterfaceItem struct {
	ID               string            `json:"id" dynamodbav:"id"`
	VpcID            string            `json:"vpc_id" dynamodbav:"vpc_id"`
	AccountID        string            `json:"account_id" dynamodbav:"account_id"`
	SubnetIDs        map[string]string `json:"subnet_ids" dynamodbav:"subnet_ids"`
	AZs              map[string]string `json:"azs" dynamodbav:"azs"`
	InterfaceType    string            `json:"interface_type" dynamodbav:"interface_type"`
	Status           string            `json:"status" dynamodbav:"status"`
	MacAddress       string            `json:"mac_address" dynamodbav:"mac_address"`
	Description      string            `json:"description" dynamodbav:"description"`
	SecurityGroupIDs []string          `json:"security_group_ids" dynamodbav:"security_group_ids"`
	PrivateIPs       []string          `json:"private_ip_addresses" dynamodbav:"private_ip_addresses"`
	PublicIPs        []string          `json:"public_ips" dynamodbav:"public_ips"`
	Attachment       Attachment        `json:"attachment" dynamodbav:"attachment"`
	Tags             map[string]string `json:"eni_tags" dynamodbav:"eni_tags"`
	ResourceType     string            `json:"resource_type" dynamodbav:"resource_type"`
	ResourceID       string            `json:"resource_id" dynamodbav:"resource_id"`
	ResourceName     string            `json:"resource_name" dynamodbav:"resource_name"`
	ResourceTags     map[string]string `json:"resource_tags" dynamodbav:"resource_tags"`
	RequesterID      string            `json:"requester_id" dynamodbav:"requester_id"`
	RequesterManaged bool              `json:"requester_managed" dynamodbav:"requester_managed"`
	Group            string            `json:"group" dynamodbav:"group"`
	LastUpdated      string            `json:"last_updated" dynamodbav:"last_updated"`
}

// SyncStats is the outcome of one discovery pass.
type SyncStats struct {
	Total     int            `json:"total"`
	Processed int            `json:"processed"`
	Saved     int            `json:"saved"`
	Errors    int            `json:"errors"`
	ByType    map[string]int `json:"by_type"`
}

// FlowRecord is one parsed VPC flow-log line (version 2 positional format).
type FlowRecord struct {
	Version     string
	AccountID   string
	InterfaceID string
	SrcAddr     string
	DstAddr     string
	SrcPort     int
	DstPort     int
	Protocol    string
	Packets     int64
	Bytes       int64
	WindowStart int64
	WindowEnd   int64
	Action      string
	Status      string
}

// TupleKey returns the 5-tuple key identifying the record's logical connection.
func (r FlowRecord) TupleKey() string {
	return TupleKey(r.SrcAddr, r.SrcPort, r.DstAddr, r.DstPort, r.Protocol)
}

// ConnectionSummary is the per-connection aggregate produced from one flow-log
// file. Accumulated fields are filled during aggregation; the remaining fields
// are stamped once when the file's window closes.
type ConnectionSummary struct {
	ID              string `json:"id"`
	UUID            string `json:"uuid"`
	SequenceNumber  int64  `json:"sequenceNumber"`
	SourceIP        string `json:"sourceIp"`
	DestinationIP   string `json:"destinationIp"`
	SourcePort      int    `json:"sourcePort"`
	DestinationPort int    `json:"destinationPort"`
	Protocol        string `json:"protocol"`
	TotalBytes      int64  `json:"totalBytes"`
	TotalPackets    int64  `json:"totalPackets"`
	ConnectionCount int64  `json:"connectionCount"`
	AcceptedCount   int64  `json:"acceptedCount"`
	RejectedCount   int64  `json:"rejectedCount"`
	FirstSeen       string `json:"firstSeen"`
	LastSeen        string `json:"lastSeen"`
	Timestamp       string `json:"timestamp"`
}
