package domain

import "fmt"

// NodeKind represents the type of cloud resource a node stands for
type NodeKind string

const (
	KindEC2         NodeKind = "EC2"
	KindASG         NodeKind = "ASG"
	KindLambda      NodeKind = "Lambda"
	KindRDS         NodeKind = "RDS"
	KindElastiCache NodeKind = "ElastiCache"
	KindNAT         NodeKind = "NAT"
	KindALB         NodeKind = "ALB"
	KindAPIGW       NodeKind = "APIGW"
	KindTGW         NodeKind = "TGW"
	KindVGW         NodeKind = "VGW"
	KindSQS         NodeKind = "SQS"
	KindS3          NodeKind = "S3"
	KindCloudFront  NodeKind = "CloudFront"
	KindIGW         NodeKind = "IGW"
)

// Locality classifies where a kind lives
type Locality string

const (
	LocalityZonal    Locality = "zonal"
	LocalityRegional Locality = "regional"
	LocalityGlobal   Locality = "global"
)

// KindInfo is the static metadata attached to a node kind
type KindInfo struct {
	Kind     NodeKind `json:"kind"`
	Label    string   `json:"label"`
	Locality Locality `json:"locality"`
}

// kinds is kept in palette order
var kinds = []KindInfo{
	{KindEC2, "EC2 Instance", LocalityZonal},
	{KindASG, "Auto Scaling Group", LocalityZonal},
	{KindLambda, "Lambda Function", LocalityZonal},
	{KindRDS, "RDS Database", LocalityZonal},
	{KindElastiCache, "ElastiCache", LocalityZonal},
	{KindNAT, "NAT Gateway", LocalityZonal},
	{KindALB, "Load Balancer", LocalityZonal},
	{KindAPIGW, "API Gateway", LocalityRegional},
	{KindTGW, "Transit Gateway", LocalityRegional},
	{KindVGW, "VPN Gateway", LocalityRegional},
	{KindSQS, "SQS Queue", LocalityRegional},
	{KindS3, "S3 Bucket", LocalityRegional},
	{KindIGW, "Internet Gateway", LocalityRegional},
	{KindCloudFront, "CloudFront", LocalityGlobal},
}

// Kinds returns metadata for every supported kind
func Kinds() []KindInfo {
	out := make([]KindInfo, len(kinds))
	copy(out, kinds)
	return out
}

// Info returns the metadata for a kind
func (k NodeKind) Info() (KindInfo, bool) {
	for _, info := range kinds {
		if info.Kind == k {
			return info, true
		}
	}
	return KindInfo{}, false
}

// Valid reports whether k is one of the supported kinds
func (k NodeKind) Valid() bool {
	_, ok := k.Info()
	return ok
}

// Label returns the display label, or the raw kind for unknown values
func (k NodeKind) Label() string {
	if info, ok := k.Info(); ok {
		return info.Label
	}
	return string(k)
}

// Locality returns the locality of the kind. Unknown kinds are zonal.
func (k NodeKind) Locality() Locality {
	if info, ok := k.Info(); ok {
		return info.Locality
	}
	return LocalityZonal
}

// IsReplicatedStore reports whether the kind supports multi-AZ standby replicas
func (k NodeKind) IsReplicatedStore() bool {
	return k == KindRDS || k == KindElastiCache
}

// ParseKind converts a string into a NodeKind
func ParseKind(s string) (NodeKind, error) {
	k := NodeKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown node kind %q", s)
	}
	return k, nil
}
