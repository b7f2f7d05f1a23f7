package service

import (
	"fmt"
	"reflect"
	"strings"

	"cloudsketch/internal/domain"

	"github.com/go-playground/validator/v10"
)

// NodePatch is a partial update of a node. Nil fields are left unchanged.
type NodePatch struct {
	Label        *string      `json:"label,omitempty"`
	Zone         *domain.Zone `json:"az,omitempty" validate:"omitempty,zone"`
	PublicIP     *bool        `json:"public_ip,omitempty"`
	Count        *int         `json:"count,omitempty" validate:"omitempty,min=1,max=64"`
	MinSize      *int         `json:"min_size,omitempty" validate:"omitempty,min=0,max=64"`
	MaxSize      *int         `json:"max_size,omitempty" validate:"omitempty,min=0,max=64"`
	MultiAZ      *bool        `json:"multi_az,omitempty"`
	StandbyZone  *domain.Zone `json:"standby_az,omitempty" validate:"omitempty,zone"`
	Engine       *string      `json:"engine,omitempty" validate:"omitempty,oneof=pg mysql redis memcached"`
	S3AccessType *string      `json:"s3_access_type,omitempty" validate:"omitempty,oneof=Gateway Interface"`
	QueueType    *string      `json:"queue_type,omitempty" validate:"omitempty,oneof=Standard FIFO"`
	APIType      *string      `json:"api_type,omitempty" validate:"omitempty,oneof=REST HTTP"`
	EndpointType *string      `json:"endpoint_type,omitempty" validate:"omitempty,oneof=Regional Private"`
	PriceClass   *string      `json:"price_class,omitempty" validate:"omitempty,oneof=PriceClass_100 PriceClass_200 PriceClass_All"`
}

// ChangeType names a structural change from the editor canvas
type ChangeType string

const (
	ChangePosition ChangeType = "position"
	ChangeRemove   ChangeType = "remove"
	ChangeSelect   ChangeType = "select"
)

// NodeChange is one entry of a canvas change batch
type NodeChange struct {
	Type     ChangeType       `json:"type" validate:"required,oneof=position remove select"`
	ID       string           `json:"id" validate:"required"`
	Position *domain.Position `json:"position,omitempty" validate:"required_if=Type position"`
	Selected bool             `json:"selected,omitempty"`
}

// EdgeChange is one entry of an edge change batch. Edge selection is not
// tracked server-side, so removal is the only structural change.
type EdgeChange struct {
	Type ChangeType `json:"type" validate:"required,oneof=remove"`
	ID   string     `json:"id" validate:"required"`
}

// Auto-correction notices returned from UpdateNode
const (
	NoticeS3InterfaceZone = "S3 Interface endpoint requires a specific zone, defaulted to " + string(domain.ZoneA)
	NoticeStandbyMoved    = "standby zone cannot match the primary zone, auto-adjusted"
	NoticeIGWEdgesRemoved = "public IP disabled, connection to Internet Gateway removed"
)

var inputValidate *validator.Validate

func init() {
	inputValidate = validator.New()
	inputValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = inputValidate.RegisterValidation("zone", func(fl validator.FieldLevel) bool {
		return domain.Zone(fl.Field().String()).Valid()
	})
}

// validateInput checks struct tags and wraps failures in ErrInvalidInput
func validateInput(v any) error {
	if err := inputValidate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// apply merges the patch into n and returns auto-correction notices.
// The S3 zone rules look at the zone the node had before the patch.
func (p NodePatch) apply(n *domain.Node) []string {
	var notices []string
	prevZone := n.Zone

	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.Zone != nil {
		n.Zone = *p.Zone
	}

	a := &n.Attributes
	setPtr(&a.PublicIP, p.PublicIP)
	setPtr(&a.Count, p.Count)
	setPtr(&a.MinSize, p.MinSize)
	setPtr(&a.MaxSize, p.MaxSize)
	setPtr(&a.MultiAZ, p.MultiAZ)
	setPtr(&a.StandbyZone, p.StandbyZone)
	setString(&a.Engine, p.Engine)
	setString(&a.S3AccessType, p.S3AccessType)
	setString(&a.QueueType, p.QueueType)
	setString(&a.APIType, p.APIType)
	setString(&a.EndpointType, p.EndpointType)
	setString(&a.PriceClass, p.PriceClass)

	if n.Kind == domain.KindS3 && p.S3AccessType != nil {
		switch *p.S3AccessType {
		case domain.S3AccessInterface:
			if prevZone == domain.ZoneRegional {
				n.Zone = domain.ZoneA
				notices = append(notices, NoticeS3InterfaceZone)
			}
		case domain.S3AccessGateway:
			n.Zone = domain.ZoneRegional
		}
	}

	if n.EnforceStandby() {
		notices = append(notices, NoticeStandbyMoved)
	}
	n.Attributes = n.Attributes.Sanitize(n.Kind)

	return notices
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		val := *v
		*dst = &val
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
