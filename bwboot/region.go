package bwboot

import (
	"slices"
	"strings"
)

// RegionEndpoint is a resolved AWS region a remote-service client targets.
type RegionEndpoint struct {
	SystemName string
	Partition  string
	DNSSuffix  string
}

type partition struct {
	name      string
	dnsSuffix string
}

var (
	partitionAWS   = partition{"aws", "amazonaws.com"}
	partitionChina = partition{"aws-cn", "amazonaws.com.cn"}
	partitionGov   = partition{"aws-us-gov", "amazonaws.com"}
	partitionEUSC  = partition{"aws-eusc", "amazonaws.eu"}
	partitionISO   = partition{"aws-iso", "c2s.ic.gov"}
	partitionISOB  = partition{"aws-iso-b", "sc2s.sgov.gov"}
)

// knownRegions maps AWS region codes to the partition they belong to.
// New AWS regions must be added here, otherwise functions deployed there fail to start.
var knownRegions = map[string]partition{
	"us-east-1":     partitionAWS,
	"us-east-2":     partitionAWS,
	"us-west-1":     partitionAWS,
	"us-west-2":     partitionAWS,
	"us-gov-east-1": partitionGov,
	"us-gov-west-1": partitionGov,

	"us-iso-east-1":  partitionISO,
	"us-iso-west-1":  partitionISO,
	"us-isob-east-1": partitionISOB,

	"eu-west-1":      partitionAWS,
	"eu-west-2":      partitionAWS,
	"eu-west-3":      partitionAWS,
	"eu-central-1":   partitionAWS,
	"eu-central-2":   partitionAWS,
	"eu-north-1":     partitionAWS,
	"eu-south-1":     partitionAWS,
	"eu-south-2":     partitionAWS,
	"eusc-de-east-1": partitionEUSC,

	"ap-east-1":      partitionAWS,
	"ap-east-2":      partitionAWS,
	"ap-south-1":     partitionAWS,
	"ap-south-2":     partitionAWS,
	"ap-northeast-1": partitionAWS,
	"ap-northeast-2": partitionAWS,
	"ap-northeast-3": partitionAWS,
	"ap-southeast-1": partitionAWS,
	"ap-southeast-2": partitionAWS,
	"ap-southeast-3": partitionAWS,
	"ap-southeast-4": partitionAWS,
	"ap-southeast-5": partitionAWS,
	"ap-southeast-6": partitionAWS,
	"ap-southeast-7": partitionAWS,

	"sa-east-1": partitionAWS,

	"mx-central-1": partitionAWS,

	"me-south-1":   partitionAWS,
	"me-central-1": partitionAWS,

	"af-south-1": partitionAWS,

	"ca-central-1": partitionAWS,
	"ca-west-1":    partitionAWS,

	"il-central-1": partitionAWS,

	"cn-north-1":     partitionChina,
	"cn-northwest-1": partitionChina,
}

// ResolveRegion looks up a region by its system name, e.g. "eu-west-1".
// An empty or unknown name is a ConfigurationError.
func ResolveRegion(name string) (RegionEndpoint, error) {
	if name == "" {
		return RegionEndpoint{}, configErrorf(RegionEnvVar, "%s is not set", RegionEnvVar)
	}
	p, ok := knownRegions[name]
	if !ok {
		return RegionEndpoint{}, configErrorf(RegionEnvVar, "unknown AWS region %q", name)
	}
	return RegionEndpoint{SystemName: name, Partition: p.name, DNSSuffix: p.dnsSuffix}, nil
}

// IsKnownRegion returns true if ResolveRegion accepts the region.
func IsKnownRegion(name string) bool {
	_, ok := knownRegions[name]
	return ok
}

// AllKnownRegions returns a sorted slice of all known AWS region codes.
func AllKnownRegions() []string {
	regions := make([]string, 0, len(knownRegions))
	for region := range knownRegions {
		regions = append(regions, region)
	}
	slices.Sort(regions)
	return regions
}

// ServiceEndpoint returns the default hostname of an AWS service in this region.
func (r RegionEndpoint) ServiceEndpoint(service string) string {
	return strings.ToLower(service) + "." + r.SystemName + "." + r.DNSSuffix
}
