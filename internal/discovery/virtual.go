package discovery

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"EagleEye/internal/model"
)

// BuildVirtualInterfaces synthesizes pseudo-interfaces for infrastructure
// that routes traffic without owning a real interface: one per attached
// internet gateway carrying the gateway address of every subnet in its VPC,
// and one per VPC for the Route53 resolver at the second host address.
func BuildVirtualInterfaces(subnets []ec2types.Subnet, igws []ec2types.InternetGateway, accountID string, now time.Time) []model.InterfaceItem {
	byVpc := map[string][]ec2types.Subnet{}
	for _, subnet := range subnets {
		vpc := aws.ToString(subnet.VpcId)
		byVpc[vpc] = append(byVpc[vpc], subnet)
	}

	stamp := now.UTC().Format(time.RFC3339)
	var items []model.InterfaceItem

	for _, igw := range igws {
		for _, att := range igw.Attachments {
			vpc := aws.ToString(att.VpcId)
			if vpc == "" || att.State != ec2types.AttachmentStatus("available") {
				continue
			}
			igwID := aws.ToString(igw.InternetGatewayId)
			igwTags := igwTagMap(igw.Tags)
			name := igwTags["Name"]
			if name == "" {
				name = igwID
			}

			ips, subnetIDs, azs := subnetAddresses(byVpc[vpc], 1)
			items = append(items, model.InterfaceItem{
				ID:               igwID,
				VpcID:            vpc,
				AccountID:        accountID,
				SubnetIDs:        subnetIDs,
				AZs:              azs,
				InterfaceType:    "igw",
				Status:           "available",
				MacAddress:       "virtual",
				Description:      fmt.Sprintf("Virtual interface for Internet Gateway %s", igwID),
				SecurityGroupIDs: []string{},
				PrivateIPs:       ips,
				PublicIPs:        []string{},
				Tags:             map[string]string{},
				ResourceType:     "igw",
				ResourceID:       igwID,
				ResourceName:     name,
				ResourceTags:     igwTags,
				RequesterID:      "aws-igw",
				RequesterManaged: true,
				Group:            "vpc",
				LastUpdated:      stamp,
			})
		}
	}

	for vpc, vpcSubnets := range byVpc {
		ips, subnetIDs, azs := subnetAddresses(vpcSubnets, 2)
		id := "resolver-" + vpc
		items = append(items, model.InterfaceItem{
			ID:               id,
			VpcID:            vpc,
			AccountID:        accountID,
			SubnetIDs:        subnetIDs,
			AZs:              azs,
			InterfaceType:    "dns",
			Status:           "available",
			MacAddress:       "virtual",
			Description:      fmt.Sprintf("Virtual interface for VPC Route53 Resolver in %s", vpc),
			SecurityGroupIDs: []string{},
			PrivateIPs:       ips,
			PublicIPs:        []string{},
			Tags:             map[string]string{},
			ResourceType:     "dns",
			ResourceID:       id,
			ResourceName:     fmt.Sprintf("Route53 Resolver (%s)", vpc),
			ResourceTags:     map[string]string{},
			RequesterID:      "aws-route53-resolver",
			RequesterManaged: true,
			Group:            "vpc",
			LastUpdated:      stamp,
		})
	}
	return items
}

// subnetAddresses collects the nth host address of each subnet's CIDR along
// with the subnet name and AZ maps.
func subnetAddresses(subnets []ec2types.Subnet, offset int) ([]string, map[string]string, map[string]string) {
	ips := []string{}
	subnetIDs := map[string]string{}
	azs := map[string]string{}
	for _, subnet := range subnets {
		prefix, err := netip.ParsePrefix(aws.ToString(subnet.CidrBlock))
		if err != nil {
			continue
		}
		addr := prefix.Masked().Addr()
		for i := 0; i < offset; i++ {
			addr = addr.Next()
		}
		ips = append(ips, addr.String())

		subnetID := aws.ToString(subnet.SubnetId)
		name := tagValue(subnet.Tags, "Name")
		if name == "" {
			name = subnetID
		}
		subnetIDs[subnetID] = name

		azName := aws.ToString(subnet.AvailabilityZone)
		azID := aws.ToString(subnet.AvailabilityZoneId)
		if azID == "" {
			azID = azName
		}
		if azName != "" {
			azs[azName] = azID
		}
	}
	return ips, subnetIDs, azs
}

func igwTagMap(tags []ec2types.Tag) map[string]string {
	m := map[string]string{}
	for _, tag := range tags {
		m[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return m
}
