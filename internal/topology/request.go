package topology

// Request is the analysis payload sent to a scorer: the physical graph with
// attributes normalized to snake_case property names.
type Request struct {
	Nodes []RequestNode `json:"nodes"`
	Edges []RequestEdge `json:"edges"`
}

// RequestNode is a physical node in exported form
type RequestNode struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// RequestEdge is a physical edge in exported form
type RequestEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Request renders the expansion as a scorer payload
func (e *Expansion) Request() *Request {
	req := &Request{
		Nodes: make([]RequestNode, 0, len(e.Nodes)),
		Edges: make([]RequestEdge, 0, len(e.Edges)),
	}

	for _, n := range e.Nodes {
		req.Nodes = append(req.Nodes, RequestNode{
			ID:         n.ID,
			Type:       string(n.Kind),
			Properties: n.Properties(),
		})
	}
	for _, edge := range e.Edges {
		req.Edges = append(req.Edges, RequestEdge{Source: edge.Source, Target: edge.Target})
	}

	return req
}

// Properties returns the exported property set of a physical node. Replication
// fields are only present when the logical node carried them. az is the zone
// the replica was placed in, while primary_az keeps the logical node's zone,
// so a NAT replica in eu-west-1b still reports the eu-west-1a it was drawn in.
func (n PhysicalNode) Properties() map[string]any {
	a := n.Attributes
	props := map[string]any{
		"label":      n.Label,
		"type":       string(n.Kind),
		"is_dead":    n.Dead,
		"az":         string(n.Zone),
		"primary_az": string(n.PrimaryZone),
	}

	setString(props, "engine", a.Engine)
	setString(props, "s3_access_type", a.S3AccessType)
	setString(props, "queue_type", a.QueueType)
	setString(props, "api_type", a.APIType)
	setString(props, "endpoint_type", a.EndpointType)
	setString(props, "price_class", a.PriceClass)
	if a.Count != nil {
		props["count"] = *a.Count
	}

	if a.MultiAZ != nil {
		props["multi_az"] = *a.MultiAZ
	}
	if a.StandbyZone != nil {
		props["standby_az"] = string(*a.StandbyZone)
	}
	if a.MinSize != nil {
		props["min_size"] = *a.MinSize
	}
	if a.MaxSize != nil {
		props["max_size"] = *a.MaxSize
	}
	if a.PublicIP != nil {
		props["public_ip"] = *a.PublicIP
	}

	return props
}

func setString(props map[string]any, key, value string) {
	if value != "" {
		props[key] = value
	}
}
