package discovery

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

func testSubnets() []ec2types.Subnet {
	return []ec2types.Subnet{
		{
			SubnetId:           aws.String("subnet-1"),
			VpcId:              aws.String("vpc-1"),
			CidrBlock:          aws.String("10.0.1.0/24"),
			AvailabilityZone:   aws.String("eu-central-1a"),
			AvailabilityZoneId: aws.String("euc1-az2"),
			Tags:               []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String("app-a")}},
		},
		{
			SubnetId:         aws.String("subnet-2"),
			VpcId:            aws.String("vpc-1"),
			CidrBlock:        aws.String("10.0.2.0/24"),
			AvailabilityZone: aws.String("eu-central-1b"),
		},
	}
}

func testIGWs() []ec2types.InternetGateway {
	return []ec2types.InternetGateway{{
		InternetGatewayId: aws.String("igw-1"),
		Attachments: []ec2types.InternetGatewayAttachment{{
			VpcId: aws.String("vpc-1"),
			State: ec2types.AttachmentStatus("available"),
		}},
		Tags: []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String("main-igw")}},
	}}
}

func TestBuildVirtualInterfaces(t *testing.T) {
	items := BuildVirtualInterfaces(testSubnets(), testIGWs(), "123456789012", time.Now())
	if len(items) != 2 {
		t.Fatalf("expected 1 gateway + 1 resolver, got %d", len(items))
	}

	igw, resolver := -1, -1
	for i := range items {
		switch items[i].ResourceType {
		case "igw":
			igw = i
		case "dns":
			resolver = i
		}
	}
	if igw < 0 || resolver < 0 {
		t.Fatalf("missing gateway or resolver in %+v", items)
	}

	g := items[igw]
	if g.ID != "igw-1" || g.ResourceName != "main-igw" {
		t.Errorf("gateway = %+v", g)
	}
	if len(g.PrivateIPs) != 2 || g.PrivateIPs[0] != "10.0.1.1" || g.PrivateIPs[1] != "10.0.2.1" {
		t.Errorf("gateway ips = %v, want first host address of each subnet", g.PrivateIPs)
	}
	if g.Group != "vpc" || g.MacAddress != "virtual" || !g.RequesterManaged {
		t.Errorf("gateway metadata = %+v", g)
	}
	if g.SubnetIDs["subnet-1"] != "app-a" || g.SubnetIDs["subnet-2"] != "subnet-2" {
		t.Errorf("subnet names = %v", g.SubnetIDs)
	}
	if g.AZs["eu-central-1a"] != "euc1-az2" || g.AZs["eu-central-1b"] != "eu-central-1b" {
		t.Errorf("azs = %v", g.AZs)
	}

	r := items[resolver]
	if r.ID != "resolver-vpc-1" {
		t.Errorf("resolver id = %q", r.ID)
	}
	if len(r.PrivateIPs) != 2 || r.PrivateIPs[0] != "10.0.1.2" || r.PrivateIPs[1] != "10.0.2.2" {
		t.Errorf("resolver ips = %v, want second host address of each subnet", r.PrivateIPs)
	}
	if r.RequesterID != "aws-route53-resolver" || r.Group != "vpc" {
		t.Errorf("resolver metadata = %+v", r)
	}
}

func TestBuildVirtualInterfacesSkipsDetachedGateways(t *testing.T) {
	igws := []ec2types.InternetGateway{{
		InternetGatewayId: aws.String("igw-2"),
		Attachments: []ec2types.InternetGatewayAttachment{{
			VpcId: aws.String("vpc-1"),
			State: ec2types.AttachmentStatusDetached,
		}},
	}}
	items := BuildVirtualInterfaces(testSubnets(), igws, "123456789012", time.Now())
	for _, item := range items {
		if item.ResourceType == "igw" {
			t.Errorf("detached gateway must not synthesize an interface: %+v", item)
		}
	}
}

func TestBuildVirtualInterfacesNoSubnets(t *testing.T) {
	items := BuildVirtualInterfaces(nil, testIGWs(), "123456789012", time.Now())
	if len(items) != 1 {
		t.Fatalf("expected only the gateway, got %d items", len(items))
	}
	if len(items[0].PrivateIPs) != 0 {
		t.Errorf("gateway with no subnets must carry no addresses, got %v", items[0].PrivateIPs)
	}
}
