// Package lookup resolves resource names and tags for classified network
// interfaces. It prefers the Resource Groups Tagging API over per-service
// describe calls, falling back to service APIs where no ARN shape exists or
// the tags carry no name.
package lookup

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"EagleEye/internal/model"
)

// TaggingAPI is the part of the Resource Groups Tagging API the lookup uses.
type TaggingAPI interface {
	GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

// EC2API is the subset of EC2 the lookup uses for fallback name resolution.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeNatGateways(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error)
	DescribeVpcEndpoints(ctx context.Context, params *ec2.DescribeVpcEndpointsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcEndpointsOutput, error)
}

// RDSAPI is the subset of RDS the lookup uses for location-based search.
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	ListTagsForResource(ctx context.Context, params *rds.ListTagsForResourceInput, optFns ...func(*rds.Options)) (*rds.ListTagsForResourceOutput, error)
}

// Resolver implements model.ResourceLookup against live AWS APIs. Lookups
// never fail hard: any API error degrades to the resource id with no tags.
type Resolver struct {
	tagging   TaggingAPI
	ec2       EC2API
	rds       RDSAPI
	region    string
	accountID string
	log       *logrus.Entry
}

// NewResolver builds a resolver scoped to one account and region.
func NewResolver(tagging TaggingAPI, ec2c EC2API, rdsc RDSAPI, region, accountID string) *Resolver {
	return &Resolver{
		tagging:   tagging,
		ec2:       ec2c,
		rds:       rdsc,
		region:    region,
		accountID: accountID,
		log:       logrus.WithField("component", "lookup"),
	}
}

var _ model.ResourceLookup = (*Resolver)(nil)

// Lookup resolves a name and tag set for the given resource. Databases with
// no parsed id are located by the interface's VPC, subnet, and AZ.
func (r *Resolver) Lookup(ctx context.Context, resourceType, resourceID string, lctx model.LookupContext) (string, map[string]string) {
	if resourceType == "rds" && resourceID == "" {
		return r.findDatabaseByLocation(ctx, lctx)
	}
	if resourceID == "" {
		return model.ResourceIDNone, nil
	}

	if arn := ResourceARN(r.region, r.accountID, resourceType, resourceID); arn != "" {
		tags := r.tagsByARN(ctx, arn)
		name := tags["Name"]
		if name == "" {
			name = resourceID
		}
		if resourceType == "vpc-endpoint" && tags["Name"] == "" {
			if svc := r.endpointServiceName(ctx, resourceID); svc != "" {
				name = svc
			}
		}
		return name, tags
	}

	switch resourceType {
	case "ec2":
		if name, tags, ok := r.instanceName(ctx, resourceID); ok {
			return name, tags
		}
	case "nat-gateway":
		if name, tags, ok := r.natGatewayName(ctx, resourceID); ok {
			return name, tags
		}
	}
	return resourceID, nil
}

func (r *Resolver) tagsByARN(ctx context.Context, arn string) map[string]string {
	out, err := r.tagging.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
		ResourceARNList: []string{arn},
	})
	if err != nil {
		r.log.WithError(err).WithField("arn", arn).Warn("tag lookup failed")
		return nil
	}
	tags := map[string]string{}
	for _, mapping := range out.ResourceTagMappingList {
		for _, tag := range mapping.Tags {
			tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
	}
	return tags
}

func (r *Resolver) endpointServiceName(ctx context.Context, endpointID string) string {
	out, err := r.ec2.DescribeVpcEndpoints(ctx, &ec2.DescribeVpcEndpointsInput{
		VpcEndpointIds: []string{endpointID},
	})
	if err != nil || len(out.VpcEndpoints) == 0 {
		return ""
	}
	return aws.ToString(out.VpcEndpoints[0].ServiceName)
}

func (r *Resolver) instanceName(ctx context.Context, instanceID string) (string, map[string]string, bool) {
	out, err := r.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		// Stale attachments reference instances that are already gone; that
		// is routine, not a lookup failure.
		if isNotFound(err) {
			r.log.WithField("instance", instanceID).Debug("instance no longer exists")
		} else {
			r.log.WithError(err).WithField("instance", instanceID).Warn("instance lookup failed")
		}
		return "", nil, false
	}
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			tags := map[string]string{}
			for _, tag := range inst.Tags {
				tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
			}
			name := tags["Name"]
			if name == "" {
				name = instanceID
			}
			return name, tags, true
		}
	}
	return "", nil, false
}

func (r *Resolver) natGatewayName(ctx context.Context, gatewayID string) (string, map[string]string, bool) {
	out, err := r.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		NatGatewayIds: []string{gatewayID},
	})
	if err != nil || len(out.NatGateways) == 0 {
		return "", nil, false
	}
	tags := map[string]string{}
	for _, tag := range out.NatGateways[0].Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	name := tags["Name"]
	if name == "" {
		name = gatewayID
	}
	return name, tags, true
}

// isNotFound reports whether err is a missing-resource API error rather than
// a transport or permission problem.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(apiErr.ErrorCode(), "NotFound")
}

// findDatabaseByLocation scans DB instances for one whose subnet group covers
// the interface's VPC and subnet in the same AZ. Database interfaces carry no
// id in their description, so placement is the only join available.
func (r *Resolver) findDatabaseByLocation(ctx context.Context, lctx model.LookupContext) (string, map[string]string) {
	var marker *string
	for {
		out, err := r.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{Marker: marker})
		if err != nil {
			r.log.WithError(err).WithField("interface", lctx.InterfaceID).Warn("database search failed")
			return model.ResourceIDNone, nil
		}
		for _, db := range out.DBInstances {
			if db.DBSubnetGroup == nil || aws.ToString(db.DBSubnetGroup.VpcId) != lctx.VpcID {
				continue
			}
			inSubnet := false
			for _, s := range db.DBSubnetGroup.Subnets {
				if aws.ToString(s.SubnetIdentifier) == lctx.SubnetID {
					inSubnet = true
					break
				}
			}
			if !inSubnet || aws.ToString(db.AvailabilityZone) != lctx.AvailabilityZone {
				continue
			}
			id := aws.ToString(db.DBInstanceIdentifier)
			tags, err := r.rds.ListTagsForResource(ctx, &rds.ListTagsForResourceInput{
				ResourceName: db.DBInstanceArn,
			})
			if err != nil {
				return id, nil
			}
			result := map[string]string{}
			for _, tag := range tags.TagList {
				result[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
			}
			return id, result
		}
		if out.Marker == nil {
			return model.ResourceIDNone, nil
		}
		marker = out.Marker
	}
}
