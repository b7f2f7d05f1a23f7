// Package domain defines the core domain types for the cloudsketch topology editor.
//
// This package contains the fundamental entities and value objects that represent
// a logical cloud-infrastructure sketch: node kinds, zones, nodes, edges and the
// ordered graph that holds them.
//
// # Core Types
//
// NodeKind enumerates the fourteen supported resource kinds (EC2, ASG, Lambda, RDS,
// ElastiCache, NAT, ALB, APIGW, TGW, VGW, SQS, S3, CloudFront, IGW). Each kind has a
// display label and a Locality (zonal, regional or global).
//
// Node is a logical node as authored in the editor. Its Attributes bag only carries
// the fields meaningful for its kind; see Attributes.Sanitize.
//
// Edge is a directed relation between two logical nodes.
//
// Graph keeps nodes and edges in declaration order. Order matters: physical
// expansion and export follow it.
//
// # Connection Rules
//
// Rulebook is the static, directional adjacency table of permitted connections.
// ValidateConnection checks a proposed edge against the rulebook plus the
// attribute constraints (an Internet Gateway only reaches an EC2 instance that has
// a public IP).
//
// # Design Principles
//
// - No database or external dependencies
// - Pure functions over explicit state, no package-level mutable state
// - Rich type system with meaningful constants and enumerations
package domain
