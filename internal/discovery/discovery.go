// Package discovery walks the network interfaces of one account and region,
// classifies each one, and lands the results in the interface table. It also
// synthesizes pseudo-interfaces for VPC infrastructure that has no real
// interface of its own.
package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/sirupsen/logrus"

	"EagleEye/internal/classifier"
	"EagleEye/internal/model"
)

// EC2API is the subset of EC2 the discovery service uses.
type EC2API interface {
	DescribeNetworkInterfaces(ctx context.Context, params *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeInternetGateways(ctx context.Context, params *ec2.DescribeInternetGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInternetGatewaysOutput, error)
}

// Service orchestrates one account/region worth of interface discovery.
type Service struct {
	ec2       EC2API
	lookup    model.ResourceLookup
	sink      model.Sink
	accountID string
	vpcID     string
	log       *logrus.Entry

	// subnetNames caches subnet id -> (name, az id) for the current pass.
	subnetNames map[string]subnetMeta
}

type subnetMeta struct {
	name string
	azID string
}

// NewService builds a discovery service. vpcID narrows the walk to one VPC
// when non-empty.
func NewService(ec2c EC2API, lookup model.ResourceLookup, sink model.Sink, accountID, vpcID string) *Service {
	return &Service{
		ec2:         ec2c,
		lookup:      lookup,
		sink:        sink,
		accountID:   accountID,
		vpcID:       vpcID,
		log:         logrus.WithField("component", "discovery"),
		subnetNames: map[string]subnetMeta{},
	}
}

// FullSync discovers every interface, classifies it, saves it, and then adds
// the synthesized infrastructure interfaces.
func (s *Service) FullSync(ctx context.Context) (model.SyncStats, error) {
	stats := model.SyncStats{ByType: map[string]int{}}

	interfaces, err := s.listInterfaces(ctx)
	if err != nil {
		return stats, err
	}
	stats.Total = len(interfaces)

	for _, eni := range interfaces {
		item := s.buildItem(ctx, eni)
		stats.Processed++
		stats.ByType[item.ResourceType]++
		s.log.WithFields(logrus.Fields{
			"interface": item.ID,
			"type":      item.ResourceType,
			"resource":  item.ResourceName,
		}).Info("interface classified")

		if err := s.sink.Put(ctx, item); err != nil {
			s.log.WithError(err).WithField("interface", item.ID).Error("save failed")
			stats.Errors++
			continue
		}
		stats.Saved++
	}

	// Infrastructure without real interfaces still belongs on the map.
	if err := s.syncVirtual(ctx, &stats); err != nil {
		s.log.WithError(err).Error("virtual interface synthesis failed")
	}
	return stats, nil
}

// SyncOne fetches, classifies, and saves a single interface by id.
func (s *Service) SyncOne(ctx context.Context, interfaceID string) (model.InterfaceItem, error) {
	out, err := s.ec2.DescribeNetworkInterfaces(ctx, &ec2.DescribeNetworkInterfacesInput{
		NetworkInterfaceIds: []string{interfaceID},
	})
	if err != nil {
		return model.InterfaceItem{}, fmt.Errorf("failed to describe %s: %w", interfaceID, err)
	}
	if len(out.NetworkInterfaces) == 0 {
		return model.InterfaceItem{}, fmt.Errorf("interface %s not found", interfaceID)
	}

	item := s.buildItem(ctx, out.NetworkInterfaces[0])
	if err := s.sink.Put(ctx, item); err != nil {
		return model.InterfaceItem{}, fmt.Errorf("failed to save %s: %w", interfaceID, err)
	}
	return item, nil
}

func (s *Service) listInterfaces(ctx context.Context) ([]ec2types.NetworkInterface, error) {
	input := &ec2.DescribeNetworkInterfacesInput{}
	if s.vpcID != "" {
		input.Filters = []ec2types.Filter{{Name: aws.String("vpc-id"), Values: []string{s.vpcID}}}
	}

	var interfaces []ec2types.NetworkInterface
	for {
		out, err := s.ec2.DescribeNetworkInterfaces(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list network interfaces: %w", err)
		}
		interfaces = append(interfaces, out.NetworkInterfaces...)
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}
	s.log.WithField("count", len(interfaces)).Info("network interfaces listed")
	return interfaces, nil
}

// buildItem flattens one raw interface, classifies it, and assembles the row
// to persist.
func (s *Service) buildItem(ctx context.Context, eni ec2types.NetworkInterface) model.InterfaceItem {
	rec := flatten(eni)
	desc := classifier.Classify(ctx, rec, s.lookup)

	subnetIDs := map[string]string{}
	azs := map[string]string{}
	if rec.SubnetID != "" {
		meta := s.subnetMeta(ctx, rec.SubnetID, rec.AvailabilityZone)
		subnetIDs[rec.SubnetID] = meta.name
		if rec.AvailabilityZone != "" {
			azs[rec.AvailabilityZone] = meta.azID
		}
	}

	return model.InterfaceItem{
		ID:               rec.ID,
		VpcID:            rec.VpcID,
		AccountID:        s.accountID,
		SubnetIDs:        subnetIDs,
		AZs:              azs,
		InterfaceType:    rec.InterfaceType,
		Status:           rec.Status,
		MacAddress:       rec.MacAddress,
		Description:      rec.Description,
		SecurityGroupIDs: rec.SecurityGroupIDs,
		PrivateIPs:       rec.PrivateIPs,
		PublicIPs:        rec.PublicIPs,
		Attachment:       rec.Attachment,
		Tags:             rec.Tags,
		ResourceType:     desc.ResourceType,
		ResourceID:       desc.ResourceID,
		ResourceName:     desc.ResourceName,
		ResourceTags:     desc.ResourceTags,
		RequesterID:      desc.RequesterID,
		RequesterManaged: desc.RequesterManaged,
		Group:            desc.Group,
		LastUpdated:      time.Now().UTC().Format(time.RFC3339),
	}
}

// subnetMeta resolves and caches the Name tag and AZ id of a subnet.
func (s *Service) subnetMeta(ctx context.Context, subnetID, azName string) subnetMeta {
	if meta, ok := s.subnetNames[subnetID]; ok {
		return meta
	}
	meta := subnetMeta{name: subnetID, azID: azName}
	out, err := s.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{SubnetIds: []string{subnetID}})
	if err == nil && len(out.Subnets) > 0 {
		subnet := out.Subnets[0]
		if name := tagValue(subnet.Tags, "Name"); name != "" {
			meta.name = name
		}
		if subnet.AvailabilityZoneId != nil {
			meta.azID = *subnet.AvailabilityZoneId
		}
	}
	s.subnetNames[subnetID] = meta
	return meta
}

func (s *Service) syncVirtual(ctx context.Context, stats *model.SyncStats) error {
	subnets, err := s.listSubnets(ctx)
	if err != nil {
		return err
	}
	igws, err := s.listInternetGateways(ctx)
	if err != nil {
		return err
	}

	for _, item := range BuildVirtualInterfaces(subnets, igws, s.accountID, time.Now()) {
		stats.Total++
		stats.Processed++
		stats.ByType[item.ResourceType]++
		s.log.WithFields(logrus.Fields{
			"interface": item.ID,
			"type":      item.ResourceType,
		}).Info("virtual interface synthesized")

		if err := s.sink.Put(ctx, item); err != nil {
			s.log.WithError(err).WithField("interface", item.ID).Error("save failed")
			stats.Errors++
			continue
		}
		stats.Saved++
	}
	return nil
}

func (s *Service) listSubnets(ctx context.Context) ([]ec2types.Subnet, error) {
	input := &ec2.DescribeSubnetsInput{}
	if s.vpcID != "" {
		input.Filters = []ec2types.Filter{{Name: aws.String("vpc-id"), Values: []string{s.vpcID}}}
	}
	var subnets []ec2types.Subnet
	for {
		out, err := s.ec2.DescribeSubnets(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list subnets: %w", err)
		}
		subnets = append(subnets, out.Subnets...)
		if out.NextToken == nil {
			return subnets, nil
		}
		input.NextToken = out.NextToken
	}
}

func (s *Service) listInternetGateways(ctx context.Context) ([]ec2types.InternetGateway, error) {
	input := &ec2.DescribeInternetGatewaysInput{}
	if s.vpcID != "" {
		input.Filters = []ec2types.Filter{{Name: aws.String("attachment.vpc-id"), Values: []string{s.vpcID}}}
	}
	var igws []ec2types.InternetGateway
	for {
		out, err := s.ec2.DescribeInternetGateways(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list internet gateways: %w", err)
		}
		igws = append(igws, out.InternetGateways...)
		if out.NextToken == nil {
			return igws, nil
		}
		input.NextToken = out.NextToken
	}
}

// flatten converts the SDK interface shape into the classifier's record.
func flatten(eni ec2types.NetworkInterface) model.InterfaceRecord {
	rec := model.InterfaceRecord{
		ID:               aws.ToString(eni.NetworkInterfaceId),
		VpcID:            aws.ToString(eni.VpcId),
		SubnetID:         aws.ToString(eni.SubnetId),
		AvailabilityZone: aws.ToString(eni.AvailabilityZone),
		InterfaceType:    string(eni.InterfaceType),
		Status:           string(eni.Status),
		MacAddress:       aws.ToString(eni.MacAddress),
		Description:      aws.ToString(eni.Description),
		RequesterID:      aws.ToString(eni.RequesterId),
		RequesterManaged: aws.ToBool(eni.RequesterManaged),
		Tags:             map[string]string{},
	}
	if rec.InterfaceType == "" {
		rec.InterfaceType = "interface"
	}
	if rec.Status == "" {
		rec.Status = "unknown"
	}

	for _, sg := range eni.Groups {
		rec.SecurityGroupIDs = append(rec.SecurityGroupIDs, aws.ToString(sg.GroupId))
	}
	for _, addr := range eni.PrivateIpAddresses {
		rec.PrivateIPs = append(rec.PrivateIPs, aws.ToString(addr.PrivateIpAddress))
		if addr.Association != nil && addr.Association.PublicIp != nil {
			rec.PublicIPs = append(rec.PublicIPs, *addr.Association.PublicIp)
		}
	}
	for _, tag := range eni.TagSet {
		rec.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	if eni.Attachment != nil {
		rec.Attachment = model.Attachment{
			ID:         aws.ToString(eni.Attachment.AttachmentId),
			InstanceID: aws.ToString(eni.Attachment.InstanceId),
			Status:     string(eni.Attachment.Status),
		}
		if eni.Attachment.AttachTime != nil {
			rec.Attachment.AttachTime = eni.Attachment.AttachTime.UTC().Format(time.RFC3339)
		}
	}
	return rec
}

func tagValue(tags []ec2types.Tag, key string) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == key {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}
