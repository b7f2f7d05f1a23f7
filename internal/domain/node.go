package domain

// Attribute value sets
const (
	EnginePostgres  = "pg"
	EngineMySQL     = "mysql"
	EngineRedis     = "redis"
	EngineMemcached = "memcached"

	S3AccessGateway   = "Gateway"
	S3AccessInterface = "Interface"

	QueueStandard = "Standard"
	QueueFIFO     = "FIFO"

	APITypeREST = "REST"
	APITypeHTTP = "HTTP"

	EndpointRegional = "Regional"
	EndpointPrivate  = "Private"

	PriceClass100 = "PriceClass_100"
	PriceClass200 = "PriceClass_200"
	PriceClassAll = "PriceClass_All"
)

// MaxReplicas bounds count, min_size and max_size. Validation tags repeat
// the literal.
const MaxReplicas = 64

// Attributes is the kind-specific attribute bag of a logical node.
// Pointer fields distinguish "unset" from the zero value.
type Attributes struct {
	PublicIP     *bool  `json:"public_ip,omitempty" yaml:"public_ip,omitempty"`
	Count        *int   `json:"count,omitempty" yaml:"count,omitempty" validate:"omitempty,min=0,max=64"`
	MinSize      *int   `json:"min_size,omitempty" yaml:"min_size,omitempty" validate:"omitempty,min=0,max=64"`
	MaxSize      *int   `json:"max_size,omitempty" yaml:"max_size,omitempty" validate:"omitempty,min=0,max=64"`
	MultiAZ      *bool  `json:"multi_az,omitempty" yaml:"multi_az,omitempty"`
	StandbyZone  *Zone  `json:"standby_az,omitempty" yaml:"standby_az,omitempty" validate:"omitempty,zone"`
	Engine       string `json:"engine,omitempty" yaml:"engine,omitempty" validate:"omitempty,oneof=pg mysql redis memcached"`
	S3AccessType string `json:"s3_access_type,omitempty" yaml:"s3_access_type,omitempty" validate:"omitempty,oneof=Gateway Interface"`
	QueueType    string `json:"queue_type,omitempty" yaml:"queue_type,omitempty" validate:"omitempty,oneof=Standard FIFO"`
	APIType      string `json:"api_type,omitempty" yaml:"api_type,omitempty" validate:"omitempty,oneof=REST HTTP"`
	EndpointType string `json:"endpoint_type,omitempty" yaml:"endpoint_type,omitempty" validate:"omitempty,oneof=Regional Private"`
	PriceClass   string `json:"price_class,omitempty" yaml:"price_class,omitempty" validate:"omitempty,oneof=PriceClass_100 PriceClass_200 PriceClass_All"`
}

// Node represents a logical node of the sketch
type Node struct {
	ID         string     `json:"id" yaml:"id" validate:"required"`
	Kind       NodeKind   `json:"type" yaml:"type" validate:"required,nodekind"`
	Label      string     `json:"label" yaml:"label"`
	Zone       Zone       `json:"az" yaml:"az" validate:"omitempty,zone"`
	Position   *Position  `json:"position,omitempty" yaml:"position,omitempty"`
	Attributes Attributes `json:"attributes" yaml:"attributes,omitempty"`

	// Chaos-mode state
	Dead     bool `json:"dead,omitempty" yaml:"dead,omitempty"`
	Critical bool `json:"critical,omitempty" yaml:"critical,omitempty"`
}

// NewNode creates a node of the given kind with the editor's defaults applied
func NewNode(id string, kind NodeKind) *Node {
	node := &Node{
		ID:    id,
		Kind:  kind,
		Label: string(kind),
		Zone:  DefaultZoneFor(kind),
	}

	switch kind {
	case KindRDS, KindElastiCache:
		node.Attributes.MultiAZ = Ptr(false)
		node.Attributes.StandbyZone = Ptr(DefaultStandbyZone)
	case KindS3:
		node.Attributes.S3AccessType = S3AccessGateway
	case KindSQS:
		node.Attributes.QueueType = QueueStandard
	case KindCloudFront:
		node.Attributes.PriceClass = PriceClass100
	case KindAPIGW:
		node.Attributes.APIType = APITypeREST
		node.Attributes.EndpointType = EndpointRegional
	}

	return node
}

// Clone returns a deep copy of the node
func (n Node) Clone() Node {
	out := n
	if n.Position != nil {
		pos := *n.Position
		out.Position = &pos
	}
	out.Attributes = n.Attributes.Clone()
	return out
}

// HasPublicIP reports whether the public-exposure flag is set
func (n *Node) HasPublicIP() bool {
	return n.Attributes.PublicIP != nil && *n.Attributes.PublicIP
}

// IsMultiAZ reports whether multi-zone replication is enabled
func (n *Node) IsMultiAZ() bool {
	return n.Attributes.MultiAZ != nil && *n.Attributes.MultiAZ
}

// EnforceStandby keeps the standby zone of a multi-AZ store away from the primary
// zone. It returns true when the standby zone had to be moved.
func (n *Node) EnforceStandby() bool {
	if !n.Kind.IsReplicatedStore() || !n.IsMultiAZ() {
		return false
	}
	if n.Attributes.StandbyZone == nil || *n.Attributes.StandbyZone != n.Zone {
		return false
	}
	n.Attributes.StandbyZone = Ptr(alternateZone(n.Zone))
	return true
}

// Normalize sanitizes attributes for the kind and enforces the standby invariant
func (n *Node) Normalize() {
	n.Attributes = n.Attributes.Sanitize(n.Kind)
	n.EnforceStandby()
}

// Clone returns a deep copy of the attribute bag
func (a Attributes) Clone() Attributes {
	out := a
	out.PublicIP = clonePtr(a.PublicIP)
	out.Count = clonePtr(a.Count)
	out.MinSize = clonePtr(a.MinSize)
	out.MaxSize = clonePtr(a.MaxSize)
	out.MultiAZ = clonePtr(a.MultiAZ)
	out.StandbyZone = clonePtr(a.StandbyZone)
	return out
}

// Sanitize returns a copy holding only the fields meaningful for kind
func (a Attributes) Sanitize(kind NodeKind) Attributes {
	src := a.Clone()
	var out Attributes

	switch kind {
	case KindEC2:
		out.PublicIP = src.PublicIP
	case KindASG:
		out.MinSize = src.MinSize
		out.MaxSize = src.MaxSize
	case KindRDS, KindElastiCache:
		out.MultiAZ = src.MultiAZ
		out.StandbyZone = src.StandbyZone
		out.Engine = src.Engine
	case KindNAT:
		out.Count = src.Count
	case KindS3:
		out.S3AccessType = src.S3AccessType
	case KindSQS:
		out.QueueType = src.QueueType
	case KindAPIGW:
		out.APIType = src.APIType
		out.EndpointType = src.EndpointType
	case KindCloudFront:
		out.PriceClass = src.PriceClass
	}

	return out
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
