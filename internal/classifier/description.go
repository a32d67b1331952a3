package classifier

import (
	"regexp"
	"strings"
)

// descriptionRule is one pattern in the ordered free-text cascade. parse
// receives the raw description and its lowercased form and reports the
// resource type, an optional resource id, and whether the rule fired.
type descriptionRule struct {
	name  string
	parse func(desc, lower string) (resourceType, resourceID string, ok bool)
}

var (
	reELB         = regexp.MustCompile(`(?i)ELB\s+(app|net|gwy)/([^/]+)/([a-f0-9]+)`)
	reClassicELB  = regexp.MustCompile(`(?i)ELB\s+([a-zA-Z0-9-]+)$`)
	reLambda      = regexp.MustCompile(`(?i)AWS Lambda VPC ENI[:\s-]+([a-zA-Z0-9\-_]+)`)
	reNATGateway  = regexp.MustCompile(`(?i)NAT Gateway\s+(nat-[a-f0-9]+)`)
	reVPCEndpoint = regexp.MustCompile(`(?i)VPC Endpoint.*?(vpce-[a-f0-9]+)`)
	reResolver    = regexp.MustCompile(`(?i)(rslvr-(in|out)-[a-f0-9]+)`)
	reECSARN      = regexp.MustCompile(`(?i)arn:aws:ecs:[^:]+:[^:]+:(attachment|task)/([a-zA-Z0-9-]+)`)
	reECSTask     = regexp.MustCompile(`(?i)ecs[:\s-]*(task|service)[:\s-]*([a-zA-Z0-9-]+)`)
	reFirstToken  = regexp.MustCompile(`([a-zA-Z0-9-]+)`)
	reFileSystem  = regexp.MustCompile(`(?i)(fs-[a-f0-9]+)`)
	reFirehose    = regexp.MustCompile(`(?i)kinesis-firehose-([a-zA-Z0-9_-]+)`)
	reMQBroker    = regexp.MustCompile(`(?i)broker\s+(b-[a-f0-9-]+)`)
	reEMRCluster  = regexp.MustCompile(`(?i)(j-[A-Z0-9]+)`)
	reWorkspace   = regexp.MustCompile(`(?i)(ws-[a-zA-Z0-9]+)`)
	reDirectory   = regexp.MustCompile(`(?i)(d-[a-zA-Z0-9]+)`)
	reTransfer    = regexp.MustCompile(`(?i)(s-[a-f0-9]+)`)
	reFirewall    = regexp.MustCompile(`(?i)(firewall-[a-f0-9]+)`)
	reStorageGW   = regexp.MustCompile(`(?i)(sgw-[A-F0-9]+)`)
	reEKSCluster  = regexp.MustCompile(`(?i)eks-([a-zA-Z0-9-]+)`)
	reTransitGW   = regexp.MustCompile(`(?i)(tgw-[a-f0-9]+)`)
)

// regexRule fires when re matches; the id is the capture group (or empty for
// group 0-only patterns).
func regexRule(resourceType string, re *regexp.Regexp) func(desc, lower string) (string, string, bool) {
	return func(desc, lower string) (string, string, bool) {
		if m := re.FindStringSubmatch(desc); m != nil {
			id := ""
			if len(m) > 1 {
				id = m[1]
			}
			return resourceType, id, true
		}
		return "", "", false
	}
}

// keywordRule fires when any keyword occurs in the lowercased description; an
// optional regex extracts the id when it also matches.
func keywordRule(resourceType string, re *regexp.Regexp, keywords ...string) func(desc, lower string) (string, string, bool) {
	return func(desc, lower string) (string, string, bool) {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				id := ""
				if re != nil {
					if m := re.FindStringSubmatch(desc); m != nil {
						id = m[1]
					}
				}
				return resourceType, id, true
			}
		}
		return "", "", false
	}
}

// descriptionRules is evaluated in order; the first rule that fires wins.
// The ordering is load-bearing: specific id-bearing patterns come before the
// broad keyword matches that would otherwise swallow them.
var descriptionRules = []descriptionRule{
	{"elb-v2", func(desc, lower string) (string, string, bool) {
		// "ELB app/my-alb/50dc6c495c0c9188"
		if m := reELB.FindStringSubmatch(desc); m != nil {
			return "elb", m[1] + "/" + m[2] + "/" + m[3], true
		}
		return "", "", false
	}},
	{"elb-classic", regexRule("elb", reClassicELB)},
	{"lambda", regexRule("lambda", reLambda)},
	{"nat-gateway", regexRule("nat-gateway", reNATGateway)},
	{"vpc-endpoint", regexRule("vpc-endpoint", reVPCEndpoint)},
	{"route53-resolver", func(desc, lower string) (string, string, bool) {
		// "Route 53 Resolver: rslvr-in-55829d25693e4b729:rni-..."
		if !strings.Contains(lower, "route 53 resolver") && !strings.Contains(lower, "route53 resolver") {
			return "", "", false
		}
		if m := reResolver.FindStringSubmatch(desc); m != nil {
			if strings.EqualFold(m[2], "in") {
				return "route53-resolver-inbound", m[1], true
			}
			return "route53-resolver-outbound", m[1], true
		}
		return "route53-resolver", "", true
	}},
	{"ecs-arn", func(desc, lower string) (string, string, bool) {
		if m := reECSARN.FindStringSubmatch(desc); m != nil {
			return "ecs", m[2], true
		}
		return "", "", false
	}},
	{"ecs-task", func(desc, lower string) (string, string, bool) {
		if m := reECSTask.FindStringSubmatch(desc); m != nil {
			return "ecs", m[2], true
		}
		return "", "", false
	}},
	{"ecs-awsvpc", func(desc, lower string) (string, string, bool) {
		if strings.Contains(lower, "awsvpc") && (strings.Contains(lower, "task") || strings.Contains(lower, "eni")) {
			id := desc
			if len(id) > 50 {
				id = id[:50]
			}
			return "ecs", id, true
		}
		return "", "", false
	}},
	{"rds", keywordRule("rds", nil, "rdsnetworkinterface", "rds network interface")},
	{"elasticache", keywordRule("elasticache", reFirstToken, "elasticache")},
	{"redshift", keywordRule("redshift", reFirstToken, "redshift")},
	{"efs", func(desc, lower string) (string, string, bool) {
		// Any fs- id is treated as an EFS mount target; FSx descriptions
		// carry the fsx keyword and rarely a bare fs- id.
		if m := reFileSystem.FindStringSubmatch(desc); m != nil {
			return "efs", m[1], true
		}
		if strings.Contains(lower, "efs") {
			return "efs", "", true
		}
		return "", "", false
	}},
	{"fsx", keywordRule("fsx", nil, "fsx")},
	{"msk", keywordRule("msk", nil, "msk", "kafka")},
	{"kinesis-firehose", keywordRule("kinesis-firehose", reFirehose, "kinesis firehose", "kinesis-firehose")},
	{"mq", keywordRule("mq", reMQBroker, "amazon mq")},
	{"emr", keywordRule("emr", reEMRCluster, "emr", "elastic mapreduce")},
	{"glue", keywordRule("glue", nil, "glue")},
	{"sagemaker", keywordRule("sagemaker", nil, "sagemaker")},
	{"workspaces", keywordRule("workspaces", reWorkspace, "workspaces")},
	{"appstream", keywordRule("appstream", nil, "appstream")},
	{"directory-service", func(desc, lower string) (string, string, bool) {
		if strings.Contains(lower, "directory") || strings.Contains(desc, "ds-") {
			id := ""
			if m := reDirectory.FindStringSubmatch(desc); m != nil {
				id = m[1]
			}
			return "directory-service", id, true
		}
		return "", "", false
	}},
	{"transfer", keywordRule("transfer", reTransfer, "transfer")},
	{"mwaa", keywordRule("mwaa", nil, "mwaa", "airflow")},
	{"global-accelerator", keywordRule("global-accelerator", nil, "global accelerator", "accelerator")},
	{"network-firewall", keywordRule("network-firewall", reFirewall, "network firewall", "firewall")},
	{"api-gateway", keywordRule("api-gateway", nil, "api gateway", "apigateway")},
	{"codebuild", keywordRule("codebuild", nil, "codebuild")},
	{"cloud9", keywordRule("cloud9", nil, "cloud9")},
	{"neptune", keywordRule("neptune", nil, "neptune")},
	{"documentdb", keywordRule("documentdb", nil, "documentdb", "docdb")},
	{"memorydb", keywordRule("memorydb", nil, "memorydb")},
	{"opensearch", keywordRule("opensearch", nil, "opensearch")},
	{"elasticsearch", keywordRule("elasticsearch", nil, "elasticsearch")},
	{"backup", keywordRule("backup", nil, "backup")},
	{"datasync", keywordRule("datasync", nil, "datasync")},
	{"storage-gateway", keywordRule("storage-gateway", reStorageGW, "storage gateway", "storagegateway")},
	{"connect", func(desc, lower string) (string, string, bool) {
		if strings.Contains(lower, "connect") && strings.Contains(lower, "amazon") {
			return "connect", "", true
		}
		return "", "", false
	}},
	{"apprunner", keywordRule("apprunner", nil, "apprunner", "app runner")},
	{"batch", func(desc, lower string) (string, string, bool) {
		if strings.Contains(lower, "batch") && strings.Contains(lower, "compute environment") {
			return "batch", "", true
		}
		return "", "", false
	}},
	{"eks", keywordRule("eks", reEKSCluster, "eks")},
	{"transit-gateway", keywordRule("transit-gateway", reTransitGW, "transit gateway", "tgw")},
	{"quicksight", keywordRule("quicksight", nil, "quicksight")},
	{"athena", keywordRule("athena", nil, "athena")},
	{"lake-formation", keywordRule("lake-formation", nil, "lake formation", "lakeformation")},
	{"iot-greengrass", keywordRule("iot-greengrass", nil, "greengrass")},
	{"verified-access", keywordRule("verified-access", nil, "verified access")},
}

// parseDescription runs the ordered rule cascade against an interface
// description. ok is false when no rule fires.
func parseDescription(desc string) (resourceType, resourceID string, ok bool) {
	if desc == "" {
		return "", "", false
	}
	lower := strings.ToLower(desc)
	for _, rule := range descriptionRules {
		if t, id, fired := rule.parse(desc, lower); fired {
			return t, id, true
		}
	}
	return "", "", false
}
