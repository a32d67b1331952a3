package classifier

// serviceAccounts maps AWS-owned account ids that create interfaces in
// customer VPCs to the owning service. Extend as new accounts are observed.
var serviceAccounts = map[string]string{
	"547236950347": "rds",              // eu-central-1
	"055625016279": "rds",              // another region
	"210876761215": "elasticache",      //
	"628676013162": "ecs",              // ECS/Fargate
	"326244987664": "ecs",              // ECS/Fargate (another)
	"580336018581": "route53-resolver", //
	"682432039653": "grafana",          // Amazon Managed Grafana
	"737353593908": "kinesis-firehose", //
	"542591804455": "mq",               //
	"295330671495": "mq",               // another
}

// requesterPrefix maps a requester-id prefix to a service name. The table is
// ordered; the first matching prefix wins.
type requesterPrefix struct {
	Prefix  string
	Service string
}

var requesterPrefixes = []requesterPrefix{
	// Load balancing
	{"amazon-elb", "elb"},
	{"amazon-elasticloadbalancing", "elb"},

	// Databases
	{"amazon-rds", "rds"},
	{"amazon-redshift", "redshift"},
	{"amazon-elasticache", "elasticache"},
	{"amazon-neptune", "neptune"},
	{"amazon-documentdb", "documentdb"},
	{"amazon-memorydb", "memorydb"},
	{"amazon-keyspaces", "keyspaces"},
	{"amazon-dynamodb", "dynamodb"}, // DAX

	// Container & compute
	{"amazon-ecs", "ecs"},
	{"amazon-eks", "eks"},
	{"aws-batch", "batch"},
	{"aws-lambda", "lambda"},

	// Analytics & big data
	{"amazon-msk", "msk"},
	{"amazon-emr", "emr"},
	{"aws-glue", "glue"},
	{"amazon-kinesis-firehose", "kinesis-firehose"},
	{"amazon-kinesis", "kinesis"},
	{"kinesis-firehose", "kinesis-firehose"},
	{"amazon-opensearch", "opensearch"},
	{"amazon-elasticsearch", "elasticsearch"},

	// Machine learning
	{"aws-sagemaker", "sagemaker"},

	// Storage & file systems
	{"amazon-efs", "efs"},
	{"amazon-fsx", "fsx"},
	{"aws-backup", "backup"},
	{"aws-storage-gateway", "storage-gateway"},

	// Messaging & integration
	{"amazon-mq", "mq"},
	{"amazon-connect", "connect"},

	// Workflow & orchestration
	{"amazon-mwaa", "mwaa"},
	{"aws-transfer", "transfer"},
	{"aws-datasync", "datasync"},

	// Directory & security
	{"amazon-directory-service", "directory-service"},
	{"aws-directory-service", "directory-service"},
	{"aws-secrets-manager", "secrets-manager"},

	// Developer tools
	{"aws-cloud9", "cloud9"},
	{"aws-codebuild", "codebuild"},

	// End user computing
	{"amazon-workspaces", "workspaces"},
	{"amazon-appstream", "appstream"},

	// Application services
	{"aws-app-runner", "apprunner"},
	{"aws-app-mesh", "appmesh"},
	{"amazon-apigateway", "api-gateway"},

	// Network services
	{"vpc-endpoint", "vpc-endpoint"},
	{"aws-global-accelerator", "global-accelerator"},
	{"aws-network-firewall", "network-firewall"},
	{"aws-verified-access", "verified-access"},
	{"aws-transit-gateway", "transit-gateway"},

	// IoT
	{"aws-iot-greengrass", "iot-greengrass"},
	{"aws-iot", "iot"},

	// Analytics & BI
	{"amazon-quicksight", "quicksight"},
	{"aws-lake-formation", "lake-formation"},
	{"amazon-athena", "athena"},

	// Monitoring & management
	{"amazon-grafana", "grafana"},
	{"awsgrafana", "grafana"},

	// DNS & networking
	{"route53-resolver", "route53-resolver"},
	{"aws-route53-resolver", "route53-resolver"},

	// General AWS managed
	{"amazon-aws", "aws-managed-service"},
}

// interfaceTypes maps the provider-declared interface type to a service name.
// Types not present here pass through verbatim.
var interfaceTypes = map[string]string{
	// Network
	"nat_gateway":                    "nat-gateway",
	"vpc_endpoint":                   "vpc-endpoint",
	"gateway_load_balancer_endpoint": "vpc-endpoint",

	// Load balancing
	"network_load_balancer": "elb",
	"gateway_load_balancer": "elb",
	"load_balancer":         "elb",

	// Compute
	"lambda": "lambda",
	"efa":    "ec2", // Elastic Fabric Adapter
	"trunk":  "ec2",
	"branch": "ec2",

	// API & integration
	"api_gateway_managed": "api-gateway",
	"iot_rules_managed":   "iot",

	// Network services
	"global_accelerator_managed": "global-accelerator",
	"transit_gateway":            "transit-gateway",
	"transit_gateway_attachment": "transit-gateway",
	"network_insights_analysis":  "network-insights",

	// Database & analytics
	"quicksight": "quicksight",

	// AWS services
	"aws_codestar_connections_managed": "codestar",
	"elasticmapreduce":                 "emr",
}

// databaseFamilies are the location-addressable database services: when
// description parsing yields one of these without an id, the instance can be
// found by matching VPC, subnet, and availability zone.
var databaseFamilies = map[string]bool{
	"rds":         true,
	"elasticache": true,
	"redshift":    true,
	"neptune":     true,
	"documentdb":  true,
	"memorydb":    true,
}

// vpcInfraTypes are resource types rendered inside the shared "vpc" group.
var vpcInfraTypes = map[string]bool{
	"igw":          true,
	"nat-gateway":  true,
	"vgw":          true,
	"peering":      true,
	"vpc-endpoint": true,
	"dns":          true,
}
