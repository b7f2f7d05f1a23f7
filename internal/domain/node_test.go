package domain

import (
	"testing"
)

func TestNewNodeDefaults(t *testing.T) {
	tests := []struct {
		kind NodeKind
		zone Zone
	}{
		{KindEC2, ZoneA},
		{KindASG, ZoneA},
		{KindRDS, ZoneA},
		{KindNAT, ZoneA},
		{KindS3, ZoneRegional},
		{KindIGW, ZoneRegional},
		{KindAPIGW, ZoneRegional},
		{KindCloudFront, ZoneGlobal},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			node := NewNode("n", tt.kind)
			if node.Zone != tt.zone {
				t.Errorf("zone = %s, want %s", node.Zone, tt.zone)
			}
			if node.Label != string(tt.kind) {
				t.Errorf("label = %s, want %s", node.Label, tt.kind)
			}
		})
	}

	t.Run("replicated stores start single-AZ with default standby", func(t *testing.T) {
		for _, kind := range []NodeKind{KindRDS, KindElastiCache} {
			node := NewNode("db", kind)
			if node.IsMultiAZ() {
				t.Errorf("%s: expected multi_az false", kind)
			}
			if node.Attributes.StandbyZone == nil || *node.Attributes.StandbyZone != DefaultStandbyZone {
				t.Errorf("%s: expected standby zone %s", kind, DefaultStandbyZone)
			}
		}
	})

	t.Run("per-kind attribute defaults", func(t *testing.T) {
		if NewNode("s", KindS3).Attributes.S3AccessType != S3AccessGateway {
			t.Error("expected S3 to default to Gateway access")
		}
		if NewNode("q", KindSQS).Attributes.QueueType != QueueStandard {
			t.Error("expected SQS to default to Standard queue")
		}
		if NewNode("c", KindCloudFront).Attributes.PriceClass != PriceClass100 {
			t.Error("expected CloudFront to default to PriceClass_100")
		}
		api := NewNode("a", KindAPIGW)
		if api.Attributes.APIType != APITypeREST || api.Attributes.EndpointType != EndpointRegional {
			t.Error("expected APIGW to default to REST/Regional")
		}
	})
}

func TestEnforceStandby(t *testing.T) {
	tests := []struct {
		name    string
		zone    Zone
		standby Zone
		multiAZ bool
		want    Zone
		changed bool
	}{
		{"collision in a moves to b", ZoneA, ZoneA, true, ZoneB, true},
		{"collision in b moves to a", ZoneB, ZoneB, true, ZoneA, true},
		{"collision in c moves to a", ZoneC, ZoneC, true, ZoneA, true},
		{"distinct zones untouched", ZoneA, ZoneC, true, ZoneC, false},
		{"single-AZ untouched", ZoneA, ZoneA, false, ZoneA, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := NewNode("db", KindRDS)
			node.Zone = tt.zone
			node.Attributes.StandbyZone = Ptr(tt.standby)
			node.Attributes.MultiAZ = Ptr(tt.multiAZ)

			changed := node.EnforceStandby()
			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
			if *node.Attributes.StandbyZone != tt.want {
				t.Errorf("standby = %s, want %s", *node.Attributes.StandbyZone, tt.want)
			}
		})
	}
}

func TestAttributesSanitize(t *testing.T) {
	full := Attributes{
		PublicIP:     Ptr(true),
		Count:        Ptr(3),
		MinSize:      Ptr(2),
		MaxSize:      Ptr(4),
		MultiAZ:      Ptr(true),
		StandbyZone:  Ptr(ZoneB),
		Engine:       EnginePostgres,
		S3AccessType: S3AccessInterface,
		QueueType:    QueueFIFO,
		APIType:      APITypeHTTP,
		EndpointType: EndpointPrivate,
		PriceClass:   PriceClassAll,
	}

	t.Run("EC2 keeps only public_ip", func(t *testing.T) {
		got := full.Sanitize(KindEC2)
		want := Attributes{PublicIP: Ptr(true)}
		if got.PublicIP == nil || *got.PublicIP != *want.PublicIP {
			t.Error("expected public_ip to survive")
		}
		if got.Count != nil || got.MinSize != nil || got.MultiAZ != nil || got.Engine != "" {
			t.Errorf("unexpected fields kept: %+v", got)
		}
	})

	t.Run("NAT keeps only count", func(t *testing.T) {
		got := full.Sanitize(KindNAT)
		if got.Count == nil || *got.Count != 3 {
			t.Error("expected count to survive")
		}
		if got.PublicIP != nil || got.MinSize != nil {
			t.Errorf("unexpected fields kept: %+v", got)
		}
	})

	t.Run("RDS keeps replication fields and engine", func(t *testing.T) {
		got := full.Sanitize(KindRDS)
		if got.MultiAZ == nil || got.StandbyZone == nil || got.Engine != EnginePostgres {
			t.Errorf("expected replication fields, got %+v", got)
		}
		if got.Count != nil || got.QueueType != "" {
			t.Errorf("unexpected fields kept: %+v", got)
		}
	})

	t.Run("IGW keeps nothing", func(t *testing.T) {
		got := full.Sanitize(KindIGW)
		if got != (Attributes{}) {
			t.Errorf("expected empty attributes, got %+v", got)
		}
	})

	t.Run("result does not alias the input", func(t *testing.T) {
		got := full.Sanitize(KindASG)
		*got.MinSize = 10
		if *full.MinSize != 2 {
			t.Error("expected input to be untouched")
		}
	})
}

func TestParseKind(t *testing.T) {
	for _, info := range Kinds() {
		k, err := ParseKind(string(info.Kind))
		if err != nil || k != info.Kind {
			t.Errorf("ParseKind(%q) = %v, %v", info.Kind, k, err)
		}
	}

	if _, err := ParseKind("Mainframe"); err == nil {
		t.Error("expected error for unknown kind")
	}

	if len(Kinds()) != 14 {
		t.Errorf("expected 14 kinds, got %d", len(Kinds()))
	}
}
