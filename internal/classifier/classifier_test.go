package classifier

import (
	"context"
	"testing"

	"EagleEye/internal/model"
)

// fakeLookup records calls and returns canned names/tags.
type fakeLookup struct {
	name  string
	tags  map[string]string
	calls []string
}

func (f *fakeLookup) Lookup(ctx context.Context, resourceType, resourceID string, lctx model.LookupContext) (string, map[string]string) {
	f.calls = append(f.calls, resourceType+"/"+resourceID)
	if f.name == "" {
		if resourceID == "" {
			return model.ResourceIDNone, map[string]string{}
		}
		return resourceID, map[string]string{}
	}
	return f.name, f.tags
}

func TestClassifyUnknownDefaults(t *testing.T) {
	got := Classify(context.Background(), model.InterfaceRecord{ID: "eni-1"}, nil)

	if got.ResourceType != "unknown" {
		t.Errorf("expected resource type 'unknown', got %q", got.ResourceType)
	}
	if got.ResourceID != "N/A" {
		t.Errorf("expected resource id 'N/A', got %q", got.ResourceID)
	}
	if got.Group != "unknown" {
		t.Errorf("expected group 'unknown', got %q", got.Group)
	}
}

func TestClassifyAttachmentDominatesDescription(t *testing.T) {
	// A description that would classify as nat-gateway must lose to a real
	// instance attachment.
	iface := model.InterfaceRecord{
		ID:          "eni-1",
		Description: "Interface for NAT Gateway nat-0123456789abcdef",
		Attachment:  model.Attachment{InstanceID: "i-0abc123"},
	}
	got := Classify(context.Background(), iface, nil)

	if got.ResourceType != "ec2" {
		t.Errorf("expected resource type 'ec2', got %q", got.ResourceType)
	}
	if got.ResourceID != "i-0abc123" {
		t.Errorf("expected resource id 'i-0abc123', got %q", got.ResourceID)
	}
}

func TestClassifyPodShortCircuit(t *testing.T) {
	// Pod interfaces are attached to worker instances and have a requester id
	// that would otherwise classify as ecs; the pod marker must win.
	lk := &fakeLookup{}
	iface := model.InterfaceRecord{
		ID:          "eni-1",
		Description: "aws-K8S-eni-abc",
		RequesterID: "amazon-ecs",
		Attachment:  model.Attachment{InstanceID: "i-0worker"},
		Tags: map[string]string{
			"cluster.k8s.amazonaws.com/name":    "prod-cluster",
			"node.k8s.amazonaws.com/instance_id": "i-0node",
			"eks:nodegroup":                     "ng-1",
			"Team":                              "platform",
		},
	}
	got := Classify(context.Background(), iface, lk)

	if got.ResourceType != "eks-pod" {
		t.Fatalf("expected resource type 'eks-pod', got %q", got.ResourceType)
	}
	if got.ResourceID != "prod-cluster/i-0node" {
		t.Errorf("expected resource id 'prod-cluster/i-0node', got %q", got.ResourceID)
	}
	if len(lk.calls) != 0 {
		t.Errorf("pod classification must not hit the lookup, got calls %v", lk.calls)
	}
	if _, ok := got.ResourceTags["Team"]; ok {
		t.Error("non-kubernetes tags must be filtered from pod resource tags")
	}
	if got.ResourceTags["eks:nodegroup"] != "ng-1" {
		t.Error("eks tags must be kept on pod resource tags")
	}
}

func TestClassifyPodInstanceFallsBackToAttachment(t *testing.T) {
	iface := model.InterfaceRecord{
		Description: "aws-K8S-eni-abc",
		Attachment:  model.Attachment{InstanceID: "i-0attached"},
		Tags:        map[string]string{"cluster.k8s.amazonaws.com/name": "c1"},
	}
	got := Classify(context.Background(), iface, nil)
	if got.ResourceID != "c1/i-0attached" {
		t.Errorf("expected resource id 'c1/i-0attached', got %q", got.ResourceID)
	}
}

func TestClassifyDeclaredInterfaceType(t *testing.T) {
	tests := []struct {
		interfaceType string
		want          string
	}{
		{"nat_gateway", "nat-gateway"},
		{"network_load_balancer", "elb"},
		{"lambda", "lambda"},
		{"trunk", "ec2"},
		{"branch", "ec2"},
		{"api_gateway_managed", "api-gateway"},
		{"some_future_type", "some_future_type"}, // unmapped types pass through
	}
	for _, tt := range tests {
		got := Classify(context.Background(), model.InterfaceRecord{InterfaceType: tt.interfaceType}, nil)
		if got.ResourceType != tt.want {
			t.Errorf("interface type %q: expected %q, got %q", tt.interfaceType, tt.want, got.ResourceType)
		}
	}
}

func TestClassifyGrafanaTagMarker(t *testing.T) {
	iface := model.InterfaceRecord{
		InterfaceType: "lambda", // tag marker overrides declared type
		Tags:          map[string]string{"aws:grafana:workspace-id": "g-abc123"},
	}
	got := Classify(context.Background(), iface, nil)
	if got.ResourceType != "grafana" {
		t.Errorf("expected 'grafana', got %q", got.ResourceType)
	}
	if got.ResourceID != "g-abc123" {
		t.Errorf("expected workspace id as resource id, got %q", got.ResourceID)
	}

	// The generic "managed" placeholder must not become the resource id.
	iface = model.InterfaceRecord{Tags: map[string]string{"AmazonGrafanaManaged": "true"}, Description: "grafana workspace"}
	got = Classify(context.Background(), iface, nil)
	if got.ResourceType != "grafana" {
		t.Errorf("expected 'grafana', got %q", got.ResourceType)
	}
	if got.ResourceID != "grafana workspace" {
		t.Errorf("expected fallback description id, got %q", got.ResourceID)
	}
}

func TestClassifyRequesterHeuristics(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		want      string
	}{
		{"service account", "547236950347", "rds"},
		{"prefix elb", "amazon-elb-something", "elb"},
		{"prefix order: longest registered first", "amazon-kinesis-firehose:xyz", "kinesis-firehose"},
		{"grafana substring", "AWSGrafanaSession-123", "grafana"},
		{"unknown requester", "123456789012", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(context.Background(), model.InterfaceRecord{RequesterID: tt.requester}, nil)
			if got.ResourceType != tt.want {
				t.Errorf("requester %q: expected %q, got %q", tt.requester, tt.want, got.ResourceType)
			}
		})
	}
}

func TestClassifyRequesterDoesNotOverrideDeclaredType(t *testing.T) {
	iface := model.InterfaceRecord{
		InterfaceType: "nat_gateway",
		RequesterID:   "amazon-elb",
	}
	got := Classify(context.Background(), iface, nil)
	if got.ResourceType != "nat-gateway" {
		t.Errorf("declared type must win over requester id, got %q", got.ResourceType)
	}
}

func TestClassifyDescriptionOverridesRequester(t *testing.T) {
	// Description parsing is more specific than the requester heuristic and
	// always overwrites when it fires.
	iface := model.InterfaceRecord{
		RequesterID: "amazon-rds",
		Description: "Interface for NAT Gateway nat-0123456789abcdef",
	}
	got := Classify(context.Background(), iface, nil)
	if got.ResourceType != "nat-gateway" {
		t.Errorf("expected 'nat-gateway', got %q", got.ResourceType)
	}
	if got.ResourceID != "nat-0123456789abcdef" {
		t.Errorf("expected nat gateway id, got %q", got.ResourceID)
	}
}

func TestClassifyDatabaseLocationLookup(t *testing.T) {
	lk := &fakeLookup{name: "orders-db", tags: map[string]string{"env": "prod"}}
	iface := model.InterfaceRecord{
		ID:               "eni-1",
		VpcID:            "vpc-1",
		SubnetID:         "subnet-1",
		AvailabilityZone: "eu-central-1a",
		Description:      "RDSNetworkInterface",
	}
	got := Classify(context.Background(), iface, lk)

	if got.ResourceType != "rds" {
		t.Fatalf("expected 'rds', got %q", got.ResourceType)
	}
	if got.ResourceID != "orders-db" {
		t.Errorf("expected located instance id 'orders-db', got %q", got.ResourceID)
	}
	if got.ResourceTags["env"] != "prod" {
		t.Errorf("expected located tags to be kept, got %v", got.ResourceTags)
	}
	if len(lk.calls) != 1 || lk.calls[0] != "rds/" {
		t.Errorf("expected one location lookup call, got %v", lk.calls)
	}
}

func TestClassifyFallbackID(t *testing.T) {
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	iface := model.InterfaceRecord{
		RequesterID: "aws-glue",
		Description: "glue " + string(long),
	}
	got := Classify(context.Background(), iface, nil)
	if got.ResourceType != "glue" {
		t.Fatalf("expected 'glue', got %q", got.ResourceType)
	}
	if len(got.ResourceID) != 100 {
		t.Errorf("expected fallback id truncated to 100 chars, got %d", len(got.ResourceID))
	}

	got = Classify(context.Background(), model.InterfaceRecord{InterfaceType: "quicksight"}, nil)
	if got.ResourceID != "aws-managed" {
		t.Errorf("expected 'aws-managed' for empty description, got %q", got.ResourceID)
	}
}

func TestGroup(t *testing.T) {
	tests := []struct {
		resourceType string
		want         string
	}{
		{"igw", "vpc"},
		{"nat-gateway", "vpc"},
		{"vgw", "vpc"},
		{"peering", "vpc"},
		{"vpc-endpoint", "vpc"},
		{"dns", "vpc"},
		{"route53-resolver-inbound", "vpc"},
		{"route53-resolver-outbound", "vpc"},
		{"ec2", "ec2"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := Group(tt.resourceType); got != tt.want {
			t.Errorf("Group(%q) = %q, want %q", tt.resourceType, got, tt.want)
		}
	}
}
