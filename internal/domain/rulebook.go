package domain

// Rulebook maps a source kind to the kinds it may target. It is directional:
// an IGW may reach an ALB but an ALB may not reach an IGW. A kind missing as a
// key has no allowed targets.
type Rulebook map[NodeKind][]NodeKind

var computeTargets = []NodeKind{
	KindRDS, KindElastiCache, KindS3, KindSQS, KindNAT, KindTGW, KindALB, KindEC2, KindASG, KindLambda,
}

var defaultRules = Rulebook{
	KindIGW:         {KindALB, KindNAT, KindAPIGW, KindEC2},
	KindCloudFront:  {KindALB, KindS3, KindAPIGW},
	KindALB:         {KindEC2, KindASG, KindLambda},
	KindAPIGW:       {KindLambda, KindALB, KindEC2, KindASG, KindSQS},
	KindNAT:         {KindIGW},
	KindEC2:         computeTargets,
	KindASG:         computeTargets,
	KindLambda:      computeTargets,
	KindTGW:         {KindEC2, KindASG, KindLambda, KindNAT, KindALB, KindVGW},
	KindVGW:         {KindTGW, KindEC2, KindASG},
	KindSQS:         {KindLambda, KindEC2},
	KindRDS:         {},
	KindElastiCache: {},
	KindS3:          {KindSQS, KindLambda},
}

// DefaultRulebook returns a copy of the built-in connection rules
func DefaultRulebook() Rulebook {
	out := make(Rulebook, len(defaultRules))
	for k, targets := range defaultRules {
		out[k] = append([]NodeKind(nil), targets...)
	}
	return out
}

// AllowedTargets returns the kinds source may connect to
func (r Rulebook) AllowedTargets(source NodeKind) []NodeKind {
	return append([]NodeKind{}, r[source]...)
}

// Allows reports whether a source kind may target a target kind
func (r Rulebook) Allows(source, target NodeKind) bool {
	for _, k := range r[source] {
		if k == target {
			return true
		}
	}
	return false
}
