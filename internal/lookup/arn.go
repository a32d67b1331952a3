package lookup

import "fmt"

// arnFormat describes how a resource type's ARN is assembled. Most services
// use a slash between the resource kind and the id; a few older ones use a
// colon.
type arnFormat struct {
	service string
	kind    string
	sep     string
}

var arnFormats = map[string]arnFormat{
	"lambda":        {"lambda", "function", ":"},
	"ec2":           {"ec2", "instance", "/"},
	"rds":           {"rds", "db", ":"},
	"nat-gateway":   {"ec2", "natgateway", "/"},
	"vpc-endpoint":  {"ec2", "vpc-endpoint", "/"},
	"ecs":           {"ecs", "task", "/"},
	"eks":           {"eks", "cluster", "/"},
	"elasticache":   {"elasticache", "cluster", ":"},
	"redshift":      {"redshift", "cluster", ":"},
	"efs":           {"elasticfilesystem", "file-system", "/"},
	"fsx":           {"fsx", "file-system", "/"},
	"msk":           {"kafka", "cluster", "/"},
	"mq":            {"mq", "broker", ":"},
	"sagemaker":     {"sagemaker", "notebook-instance", "/"},
	"emr":           {"elasticmapreduce", "cluster", "/"},
	"glue":          {"glue", "job", "/"},
	"opensearch":    {"es", "domain", "/"},
	"elasticsearch": {"es", "domain", "/"},
	"neptune":       {"rds", "cluster", ":"},
	"documentdb":    {"rds", "cluster", ":"},
	"memorydb":      {"memorydb", "cluster", "/"},
}

// ResourceARN builds the ARN for a resource type and id, or "" when the type
// has no known ARN shape.
func ResourceARN(region, accountID, resourceType, resourceID string) string {
	if resourceType == "elb" {
		// Both v2 ("app/name/hash") and classic ids land under loadbalancer/.
		return fmt.Sprintf("arn:aws:elasticloadbalancing:%s:%s:loadbalancer/%s", region, accountID, resourceID)
	}
	f, ok := arnFormats[resourceType]
	if !ok {
		return ""
	}
	return fmt.Sprintf("arn:aws:%s:%s:%s:%s%s%s", f.service, region, accountID, f.kind, f.sep, resourceID)
}
