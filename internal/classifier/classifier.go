// Package classifier decides which resource or managed service owns a network
// interface. Classification is a deterministic cascade over the interface's
// metadata; it never fails, falling back to the "unknown" type when no rule
// applies. Rule precedence: pod-marker > attachment > declared interface-type
// > tag-marker > requester-id > description-parsing > fallback id. Description
// parsing is the one late rule allowed to overwrite an earlier type, because a
// description carrying a concrete resource id is more specific than requester
// or type metadata.
package classifier

import (
	"context"
	"strings"

	"EagleEye/internal/model"
)

// podDescriptionPrefix marks interfaces provisioned by the VPC CNI for
// Kubernetes pods. They are attached to worker instances, so the check must
// run before the attachment rule.
const podDescriptionPrefix = "aws-K8S-"

const (
	podClusterTagKey  = "cluster.k8s.amazonaws.com/name"
	podInstanceTagKey = "node.k8s.amazonaws.com/instance_id"

	grafanaManagedTagKey   = "AmazonGrafanaManaged"
	grafanaWorkspaceTagKey = "aws:grafana:workspace-id"
)

// Classify maps an interface to the resource that owns it. lk resolves
// display names and tags for identified resources; it may be nil, in which
// case names default to the resource id.
func Classify(ctx context.Context, iface model.InterfaceRecord, lk model.ResourceLookup) model.ResourceDescriptor {
	result := model.ResourceDescriptor{
		ResourceType:     model.ResourceTypeUnknown,
		ResourceID:       model.ResourceIDNone,
		ResourceName:     model.ResourceIDNone,
		ResourceTags:     map[string]string{},
		RequesterID:      iface.RequesterID,
		RequesterManaged: iface.RequesterManaged,
	}
	lctx := model.LookupContext{
		InterfaceID:      iface.ID,
		VpcID:            iface.VpcID,
		SubnetID:         iface.SubnetID,
		AvailabilityZone: iface.AvailabilityZone,
	}

	// Rule 1: pod interfaces short-circuit everything else.
	if strings.HasPrefix(iface.Description, podDescriptionPrefix) {
		cluster := iface.Tags[podClusterTagKey]
		if cluster == "" {
			cluster = "unknown"
		}
		instance := iface.Tags[podInstanceTagKey]
		if instance == "" {
			instance = iface.Attachment.InstanceID
		}
		if instance == "" {
			instance = "unknown"
		}
		result.ResourceType = "eks-pod"
		result.ResourceID = cluster + "/" + instance
		result.ResourceName = cluster
		result.ResourceTags = podTags(iface.Tags)
		result.Group = Group(result.ResourceType)
		return result
	}

	// Rule 2: direct attachment to a compute instance.
	if id := iface.Attachment.InstanceID; id != "" {
		result.ResourceType = "ec2"
		result.ResourceID = id
		result.ResourceName, result.ResourceTags = lookup(ctx, lk, "ec2", id, lctx)
		result.Group = Group(result.ResourceType)
		return result
	}

	// Rule 3: provider-declared interface type.
	if iface.InterfaceType != "" && iface.InterfaceType != "interface" {
		if mapped, ok := interfaceTypes[iface.InterfaceType]; ok {
			result.ResourceType = mapped
		} else {
			result.ResourceType = iface.InterfaceType
		}
	}

	// Rule 4: service-specific tag markers.
	if _, ok := iface.Tags[grafanaManagedTagKey]; ok {
		result.ResourceType = "grafana"
	}
	if workspace, ok := iface.Tags[grafanaWorkspaceTagKey]; ok {
		result.ResourceType = "grafana"
		if workspace != "managed" {
			result.ResourceID = workspace
		}
	}

	// Rule 5: requester-id heuristics; never overwrites an earlier type.
	if iface.RequesterID != "" {
		if strings.Contains(strings.ToLower(iface.RequesterID), "grafana") && result.ResourceType == model.ResourceTypeUnknown {
			result.ResourceType = "grafana"
		}
		if service, ok := serviceAccounts[iface.RequesterID]; ok {
			if result.ResourceType == model.ResourceTypeUnknown {
				result.ResourceType = service
			}
		} else {
			for _, entry := range requesterPrefixes {
				if strings.HasPrefix(iface.RequesterID, entry.Prefix) {
					if result.ResourceType == model.ResourceTypeUnknown {
						result.ResourceType = entry.Service
					}
					break
				}
			}
		}
	}

	// Rule 6: description parsing. A firing rule overwrites the type set by
	// rules 3-5.
	if parsedType, parsedID, ok := parseDescription(iface.Description); ok {
		result.ResourceType = parsedType
		if parsedID != "" {
			result.ResourceID = parsedID
			result.ResourceName, result.ResourceTags = lookup(ctx, lk, parsedType, parsedID, lctx)
		} else if databaseFamilies[parsedType] {
			// Database interfaces carry no id; search by placement.
			name, tags := lookup(ctx, lk, parsedType, "", lctx)
			if name != "" && name != model.ResourceIDNone {
				result.ResourceID = name
				result.ResourceName = name
				result.ResourceTags = tags
			}
		}
	}

	// Rule 7: fallback id for typed interfaces without an extracted id.
	if result.ResourceID == model.ResourceIDNone && result.ResourceType != model.ResourceTypeUnknown {
		if iface.Description != "" {
			result.ResourceID = truncate(iface.Description, 100)
		} else {
			result.ResourceID = "aws-managed"
		}
	}

	result.Group = Group(result.ResourceType)
	return result
}

// Group maps a resource type to its visualization group. VPC infrastructure
// shares the "vpc" group; everything else groups under its own type.
func Group(resourceType string) string {
	if vpcInfraTypes[resourceType] || strings.HasPrefix(resourceType, "route53-resolver") {
		return "vpc"
	}
	return resourceType
}

// podTags keeps only the Kubernetes-related tags of a pod interface.
func podTags(tags map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range tags {
		if strings.HasPrefix(k, "eks:") || strings.HasPrefix(k, "cluster.k8s.") || strings.HasPrefix(k, "node.k8s.") {
			out[k] = v
		}
	}
	return out
}

func lookup(ctx context.Context, lk model.ResourceLookup, resourceType, resourceID string, lctx model.LookupContext) (string, map[string]string) {
	if lk == nil {
		if resourceID == "" {
			return model.ResourceIDNone, map[string]string{}
		}
		return resourceID, map[string]string{}
	}
	return lk.Lookup(ctx, resourceType, resourceID, lctx)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
